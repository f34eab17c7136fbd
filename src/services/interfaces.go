// src/services/interfaces.go
package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/centavo/backend/src/models"
)

const (
	ckUserTransactions = "res_transactions_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// ErrSourceUnreadable marks an ingestion call whose CSV source could not be
// read at all. Per-row problems never carry this error; they end up inside
// the IngestionReport instead.
var ErrSourceUnreadable = errors.New("csv source unreadable")

// IngestionService is the entry point the upload endpoint consumes.
type IngestionService interface {
	// IngestTransactionsCSV streams the CSV source, parses and deduplicates
	// its rows for the user, and returns a summary report. Only an unreadable
	// source produces a non-nil error; everything downstream of "the source
	// opened" is per-row recoverable and reported in the result.
	IngestTransactionsCSV(fileReader io.Reader, userID int64) (*models.IngestionReport, error)
}

// TransactionService serves the browsing endpoints.
type TransactionService interface {
	ListUserTransactions(userID int64, skip, take int) ([]models.Transaction, error)
	GetTransactionByID(id, userID int64) (*models.Transaction, error)
	ListCategories() ([]models.Category, error)
	InvalidateUserCache(userID int64)
}
