// src/services/ingestion_service.go
package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/username/centavo/backend/src/ingestion"
	"github.com/username/centavo/backend/src/logger"
	"github.com/username/centavo/backend/src/models"
)

type ingestionServiceImpl struct {
	reconciler         *ingestion.Reconciler
	transactionService TransactionService
}

// NewIngestionService wires the ingestion pipeline. The store is injected
// rather than reached for globally so tests can simulate storage behavior,
// including concurrent-insert races.
func NewIngestionService(store ingestion.TransactionStore, transactionService TransactionService) IngestionService {
	return &ingestionServiceImpl{
		reconciler:         ingestion.NewReconciler(store),
		transactionService: transactionService,
	}
}

func (s *ingestionServiceImpl) IngestTransactionsCSV(fileReader io.Reader, userID int64) (*models.IngestionReport, error) {
	startTime := time.Now()
	logger.L.Info("IngestTransactionsCSV START", "userID", userID)

	reader := csv.NewReader(fileReader)
	reader.FieldsPerRecord = -1 // bank exports pad rows inconsistently

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV header: %v", ErrSourceUnreadable, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF") // Excel exports often lead with a BOM
	}

	report := &models.IngestionReport{Errors: []models.IngestionError{}}
	var drafts []*models.TransactionDraft

	// Phase one: stream rows, parse, buffer valid drafts. Parse failures are
	// recorded in row order; blank rows bump totalRows and nothing else.
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading CSV row: %v", ErrSourceUnreadable, err)
		}

		report.TotalRows++

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}

		draft, parseErr := ingestion.ParseRow(row, report.TotalRows)
		if parseErr != nil {
			report.Errors = append(report.Errors, models.IngestionError{
				Row:     report.TotalRows,
				Message: parseErr.Error(),
				Data:    row,
			})
			continue
		}
		if draft == nil {
			continue
		}
		drafts = append(drafts, draft)
	}

	// Phase two: reconcile the whole batch in one call. Persistence errors
	// are appended after all parse errors, in draft order, not re-sorted by
	// original row number.
	result, err := s.reconciler.Reconcile(drafts, userID)
	if err != nil {
		return nil, err
	}
	report.SuccessfullyAdded = len(result.Persisted)
	report.DuplicatesIgnored = result.Duplicates
	report.Errors = append(report.Errors, result.Errors...)

	if report.SuccessfullyAdded > 0 && s.transactionService != nil {
		s.transactionService.InvalidateUserCache(userID)
	}

	logger.L.Info("IngestTransactionsCSV END",
		"userID", userID,
		"totalRows", report.TotalRows,
		"added", report.SuccessfullyAdded,
		"duplicates", report.DuplicatesIgnored,
		"errors", len(report.Errors),
		"duration", time.Since(startTime),
	)
	return report, nil
}
