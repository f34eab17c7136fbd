// src/ingestion/hash.go
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/username/centavo/backend/src/models"
)

// hashSeparator joins the fingerprint fields. It is not expected to occur in
// bank export data.
const hashSeparator = "|"

// Fingerprint derives the deduplication hash for a draft: a SHA-256 digest of
// its content fields joined in fixed order, rendered as 64 lowercase hex
// characters. Nil fields contribute empty strings so that every field,
// present or not, affects the output.
//
// The owning user is deliberately excluded: the same bank transaction
// imported independently by two users must hash identically. Per-user
// uniqueness is enforced by the (user_id, transaction_hash) storage key.
func Fingerprint(d *models.TransactionDraft) string {
	parts := []string{
		d.Type,
		deref(d.Details),
		deref(d.Particulars),
		deref(d.Code),
		deref(d.Reference),
		strconv.FormatFloat(d.Amount, 'f', -1, 64),
		d.Date.UTC().Format("2006-01-02T15:04:05.000Z"),
		deref(d.ForeignCurrencyAmount),
		deref(d.ConversionCharge),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, hashSeparator)))
	return hex.EncodeToString(sum[:])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
