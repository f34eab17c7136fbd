// src/model/transaction.go
package model

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/centavo/backend/src/models"
)

// Dates are stored as UTC instants in TEXT columns; SQLite has no native
// datetime type and lexical order matches chronological order in this format.
const dateLayout = "2006-01-02T15:04:05Z"

// TransactionStore is the sqlite-backed storage for transaction records. It
// satisfies ingestion.TransactionStore.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// ListTransactionFingerprints returns the set of transaction hashes already
// persisted for the user.
func (s *TransactionStore) ListTransactionFingerprints(userID int64) (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT transaction_hash FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying transaction fingerprints for userID %d: %w", userID, err)
	}
	defer rows.Close()

	fingerprints := make(map[string]struct{})
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scanning transaction fingerprint for userID %d: %w", userID, err)
		}
		fingerprints[hash] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction fingerprints for userID %d: %w", userID, err)
	}
	return fingerprints, nil
}

// InsertTransaction persists a new record and fills in its ID and CreatedAt.
// A (user_id, transaction_hash) uniqueness violation is translated into an
// error wrapping models.ErrDuplicateTransaction.
func (s *TransactionStore) InsertTransaction(t *models.Transaction) error {
	t.CreatedAt = time.Now().UTC()

	res, err := s.db.Exec(`
		INSERT INTO transactions
			(user_id, transaction_hash, type, details, particulars, code, reference,
			 amount, date, foreign_currency_amount, conversion_charge, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.TransactionHash, t.Type, t.Details, t.Particulars, t.Code, t.Reference,
		t.Amount, t.Date.UTC().Format(dateLayout), t.ForeignCurrencyAmount, t.ConversionCharge,
		t.CreatedAt.Format(dateLayout),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			return fmt.Errorf("%w (userID %d, hash %s)", models.ErrDuplicateTransaction, t.UserID, t.TransactionHash)
		}
		return fmt.Errorf("inserting transaction for userID %d: %w", t.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted transaction id for userID %d: %w", t.UserID, err)
	}
	t.ID = id
	return nil
}

// FindTransactionByUserAndHash returns the user's record with the given
// content hash, or nil when none exists.
func (s *TransactionStore) FindTransactionByUserAndHash(userID int64, hash string) (*models.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, transaction_hash, type, details, particulars, code, reference,
		       amount, date, foreign_currency_amount, conversion_charge, created_at
		FROM transactions
		WHERE user_id = ? AND transaction_hash = ?`, userID, hash)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding transaction by hash for userID %d: %w", userID, err)
	}
	return tx, nil
}

// ListByUser returns the user's transactions, newest date first, with their
// category associations attached. skip/take paginate; take <= 0 means a
// default page of 100.
func (s *TransactionStore) ListByUser(userID int64, skip, take int) ([]models.Transaction, error) {
	if take <= 0 {
		take = 100
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, transaction_hash, type, details, particulars, code, reference,
		       amount, date, foreign_currency_amount, conversion_charge, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?`, userID, take, skip)
	if err != nil {
		return nil, fmt.Errorf("querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction row for userID %d: %w", userID, err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows for userID %d: %w", userID, err)
	}

	if err := s.attachCategories(transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// GetByID returns one of the user's transactions with categories attached,
// or nil when it does not exist or belongs to someone else.
func (s *TransactionStore) GetByID(id, userID int64) (*models.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, transaction_hash, type, details, particulars, code, reference,
		       amount, date, foreign_currency_amount, conversion_charge, created_at
		FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding transaction %d for userID %d: %w", id, userID, err)
	}

	batch := []models.Transaction{*tx}
	if err := s.attachCategories(batch); err != nil {
		return nil, err
	}
	return &batch[0], nil
}

// ListCategories returns all categories, name-ascending. Category management
// belongs to account flows; this subsystem only reads them.
func (s *TransactionStore) ListCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// attachCategories loads the category associations for a batch of
// transactions in one query.
func (s *TransactionStore) attachCategories(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Transaction, len(transactions))
	args := make([]interface{}, len(transactions))
	for i := range transactions {
		byID[transactions[i].ID] = &transactions[i]
		args[i] = transactions[i].ID
	}

	query := `
		SELECT tc.transaction_id, c.id, c.name
		FROM transaction_categories tc
		JOIN categories c ON c.id = tc.category_id
		WHERE tc.transaction_id IN (?` + strings.Repeat(",?", len(args)-1) + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("querying transaction categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID int64
		var c models.Category
		if err := rows.Scan(&txID, &c.ID, &c.Name); err != nil {
			return fmt.Errorf("scanning transaction category row: %w", err)
		}
		if tx, ok := byID[txID]; ok {
			tx.Categories = append(tx.Categories, c)
		}
	}
	return rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var details, particulars, code, reference, fcAmount, convCharge sql.NullString
	var dateStr, createdStr string

	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.TransactionHash, &tx.Type, &details, &particulars,
		&code, &reference, &tx.Amount, &dateStr, &fcAmount, &convCharge, &createdStr,
	)
	if err != nil {
		return nil, err
	}

	tx.Details = nullableString(details)
	tx.Particulars = nullableString(particulars)
	tx.Code = nullableString(code)
	tx.Reference = nullableString(reference)
	tx.ForeignCurrencyAmount = nullableString(fcAmount)
	tx.ConversionCharge = nullableString(convCharge)

	if tx.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("parsing stored transaction date '%s': %w", dateStr, err)
	}
	if tx.CreatedAt, err = time.Parse(dateLayout, createdStr); err != nil {
		return nil, fmt.Errorf("parsing stored created_at '%s': %w", createdStr, err)
	}
	return &tx, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
