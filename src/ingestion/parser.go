// src/ingestion/parser.go
package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/centavo/backend/src/models"
)

// Expected column headers of a bank statement export.
const (
	colType                  = "Type"
	colDetails               = "Details"
	colParticulars           = "Particulars"
	colCode                  = "Code"
	colReference             = "Reference"
	colAmount                = "Amount"
	colDate                  = "Date"
	colForeignCurrencyAmount = "ForeignCurrencyAmount"
	colConversionCharge      = "ConversionCharge"
)

// RowValidationError reports a single malformed CSV row. The row is skipped
// and ingestion continues.
type RowValidationError struct {
	Row     int
	Message string
}

func (e *RowValidationError) Error() string {
	return e.Message
}

// ParseRow converts one CSV row (column header -> raw cell value) into a
// TransactionDraft. rowNumber is the 1-based data-row number, used in error
// messages.
//
// A row with Type, Details and Amount all empty is a blank separator, not an
// error: it yields (nil, nil). Details is the one column that may be present
// but empty; it is stored as null in that case.
func ParseRow(row map[string]string, rowNumber int) (*models.TransactionDraft, error) {
	// Skip empty rows
	if row[colType] == "" && row[colDetails] == "" && row[colAmount] == "" {
		return nil, nil
	}

	_, detailsPresent := row[colDetails]
	if row[colType] == "" || !detailsPresent || row[colAmount] == "" || row[colDate] == "" {
		return nil, &RowValidationError{
			Row:     rowNumber,
			Message: fmt.Sprintf("Missing required fields (Type, Details, Amount, Date) in row %d", rowNumber),
		}
	}

	date, ok := parseStatementDate(row[colDate])
	if !ok {
		return nil, &RowValidationError{
			Row:     rowNumber,
			Message: fmt.Sprintf("Invalid date format '%s' in row %d. Expected DD/MM/YYYY", row[colDate], rowNumber),
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(row[colAmount]), 64)
	if err != nil {
		return nil, &RowValidationError{
			Row:     rowNumber,
			Message: fmt.Sprintf("Invalid amount '%s' in row %d", row[colAmount], rowNumber),
		}
	}

	return &models.TransactionDraft{
		Type:                  strings.TrimSpace(row[colType]),
		Details:               optionalText(row[colDetails]),
		Particulars:           optionalText(row[colParticulars]),
		Code:                  optionalText(row[colCode]),
		Reference:             optionalText(row[colReference]),
		Amount:                amount,
		Date:                  date,
		ForeignCurrencyAmount: optionalText(row[colForeignCurrencyAmount]),
		ConversionCharge:      optionalText(row[colConversionCharge]),
	}, nil
}

// parseStatementDate parses a DD/MM/YYYY date. The constructed date is
// re-derived and compared against the input parts so that impossible
// combinations like 31/02/2025 fail instead of being normalized forward.
func parseStatementDate(dateString string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(dateString), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	year, errYear := strconv.Atoi(parts[2])
	if errDay != nil || errMonth != nil || errYear != nil {
		return time.Time{}, false
	}

	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, false
	}

	return date, true
}

// optionalText trims a cell value and converts empty-after-trim to nil.
func optionalText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
