// src/ingestion/reconciler.go
package ingestion

import (
	"errors"
	"fmt"

	"github.com/username/centavo/backend/src/logger"
	"github.com/username/centavo/backend/src/models"
)

// TransactionStore is the storage capability the reconciler needs. The
// sqlite-backed implementation lives in src/model; tests inject fakes to
// exercise the concurrent-insert race path.
type TransactionStore interface {
	// ListTransactionFingerprints returns every transaction hash already
	// persisted for the user.
	ListTransactionFingerprints(userID int64) (map[string]struct{}, error)
	// InsertTransaction persists a new record. A violation of the
	// (user_id, transaction_hash) uniqueness constraint must be surfaced as
	// an error wrapping models.ErrDuplicateTransaction so it can be told
	// apart from other write failures.
	InsertTransaction(tx *models.Transaction) error
	// FindTransactionByUserAndHash returns the persisted record with the
	// given hash, or nil if none exists.
	FindTransactionByUserAndHash(userID int64, hash string) (*models.Transaction, error)
}

// ReconcileResult is the outcome of reconciling one batch of drafts.
type ReconcileResult struct {
	Persisted  []*models.Transaction
	Duplicates int
	Errors     []models.IngestionError
}

// Reconciler decides per draft whether to persist or skip, comparing
// fingerprints against the user's existing transaction history.
type Reconciler struct {
	store TransactionStore
}

func NewReconciler(store TransactionStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile processes drafts in input order against the user's existing
// fingerprint set, which is loaded once up front. A draft whose fingerprint
// is already in the running set (pre-existing or added earlier in the same
// batch) counts as a duplicate without touching storage; anything else is
// inserted. A failed insert never aborts the batch.
//
// The in-memory pre-check is not transactionally isolated, so an insert can
// still lose a race against a concurrent writer and hit the storage
// uniqueness constraint. That case converges: the already-existing record is
// fetched and counted as persisted rather than reported as an error.
func (r *Reconciler) Reconcile(drafts []*models.TransactionDraft, userID int64) (*ReconcileResult, error) {
	seen, err := r.store.ListTransactionFingerprints(userID)
	if err != nil {
		return nil, fmt.Errorf("loading existing transaction fingerprints for user %d: %w", userID, err)
	}
	if seen == nil {
		seen = make(map[string]struct{})
	}

	result := &ReconcileResult{}
	for _, draft := range drafts {
		hash := Fingerprint(draft)
		if _, dup := seen[hash]; dup {
			result.Duplicates++
			continue
		}

		record := &models.Transaction{
			UserID:           userID,
			TransactionHash:  hash,
			TransactionDraft: *draft,
		}
		if err := r.store.InsertTransaction(record); err != nil {
			if errors.Is(err, models.ErrDuplicateTransaction) {
				// Lost a race against a concurrent writer. The record exists,
				// which is the outcome we wanted; fetch it and move on.
				existing, findErr := r.store.FindTransactionByUserAndHash(userID, hash)
				if findErr != nil || existing == nil {
					result.Errors = append(result.Errors, models.IngestionError{
						Message:     fmt.Sprintf("transaction exists but could not be fetched after duplicate-key insert: %v", findErr),
						Transaction: draft,
					})
					continue
				}
				logger.L.Debug("Converged on concurrently inserted transaction", "userID", userID, "hash", hash)
				record = existing
			} else {
				result.Errors = append(result.Errors, models.IngestionError{
					Message:     err.Error(),
					Transaction: draft,
				})
				continue
			}
		}

		seen[hash] = struct{}{}
		result.Persisted = append(result.Persisted, record)
	}

	return result, nil
}
