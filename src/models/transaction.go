// src/models/transaction.go
package models

import (
	"errors"
	"time"
)

// ErrDuplicateTransaction tags a storage insert that violated the
// (user_id, transaction_hash) uniqueness constraint. Callers match it with
// errors.Is; only the storage layer inspects driver error text.
var ErrDuplicateTransaction = errors.New("transaction already exists for this user")

// TransactionDraft is an unpersisted transaction candidate parsed from one
// CSV row. Optional columns are nil when the source cell was empty.
type TransactionDraft struct {
	Type                  string    `json:"type"`
	Details               *string   `json:"details"`
	Particulars           *string   `json:"particulars"`
	Code                  *string   `json:"code"`
	Reference             *string   `json:"reference"`
	Amount                float64   `json:"amount"`
	Date                  time.Time `json:"date"`
	ForeignCurrencyAmount *string   `json:"foreign_currency_amount"` // kept as raw text, not parsed
	ConversionCharge      *string   `json:"conversion_charge"`       // kept as raw text, not parsed
}

// Category is a user-facing transaction label. Categories are managed by
// account flows elsewhere; ingestion only reads the association.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is a persisted transaction owned by exactly one user.
// (user_id, transaction_hash) is unique; the same hash may repeat across
// different users.
type Transaction struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	TransactionHash string `json:"transaction_hash"`
	TransactionDraft
	Categories []Category `json:"categories,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IngestionError is one entry in an IngestionReport's error list. Row-parse
// failures carry Row and Data (the raw row); persistence failures carry the
// offending draft instead.
type IngestionError struct {
	Row         int               `json:"row,omitempty"`
	Message     string            `json:"error"`
	Data        map[string]string `json:"data,omitempty"`
	Transaction *TransactionDraft `json:"transaction,omitempty"`
}

// IngestionReport summarizes one CSV ingestion run.
//
// TotalRows counts every data row seen, including blank rows and rows that
// errored, while blank rows appear in no other counter. The sum of the other
// counters is therefore not guaranteed to equal TotalRows; downstream
// consumers rely on this accounting, so it is kept as-is.
type IngestionReport struct {
	TotalRows         int              `json:"totalRows"`
	SuccessfullyAdded int              `json:"successfullyAdded"`
	DuplicatesIgnored int              `json:"duplicatesIgnored"`
	Errors            []IngestionError `json:"errors"`
}
