// src/ingestion/hash_test.go
package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/centavo/backend/src/models"
)

func strptr(s string) *string { return &s }

func baseDraft() *models.TransactionDraft {
	return &models.TransactionDraft{
		Type:                  "POS",
		Details:               strptr("COUNTDOWN AUCKLAND"),
		Particulars:           strptr("CARD 1234"),
		Code:                  strptr("4829"),
		Reference:             strptr("REF-001"),
		Amount:                -45.67,
		Date:                  time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		ForeignCurrencyAmount: strptr("-30.00 USD"),
		ConversionCharge:      strptr("0.50"),
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(baseDraft())
	b := Fingerprint(baseDraft())

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestFingerprintSensitiveToEveryField(t *testing.T) {
	base := Fingerprint(baseDraft())

	mutations := map[string]func(*models.TransactionDraft){
		"type":                    func(d *models.TransactionDraft) { d.Type = "DD" },
		"details":                 func(d *models.TransactionDraft) { d.Details = strptr("OTHER SHOP") },
		"particulars":             func(d *models.TransactionDraft) { d.Particulars = strptr("CARD 9999") },
		"code":                    func(d *models.TransactionDraft) { d.Code = strptr("1111") },
		"reference":               func(d *models.TransactionDraft) { d.Reference = strptr("REF-002") },
		"amount":                  func(d *models.TransactionDraft) { d.Amount = -45.68 },
		"date":                    func(d *models.TransactionDraft) { d.Date = d.Date.AddDate(0, 0, 1) },
		"foreign currency amount": func(d *models.TransactionDraft) { d.ForeignCurrencyAmount = strptr("-31.00 USD") },
		"conversion charge":       func(d *models.TransactionDraft) { d.ConversionCharge = strptr("0.60") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := baseDraft()
			mutate(d)
			assert.NotEqual(t, base, Fingerprint(d), "changing %s must change the fingerprint", name)
		})
	}
}

func TestFingerprintNilOptionalFields(t *testing.T) {
	d := baseDraft()
	d.Details = nil
	d.Particulars = nil
	d.Code = nil
	d.Reference = nil
	d.ForeignCurrencyAmount = nil
	d.ConversionCharge = nil

	withNils := Fingerprint(d)

	e := baseDraft()
	e.Details = strptr("")
	e.Particulars = strptr("")
	e.Code = strptr("")
	e.Reference = strptr("")
	e.ForeignCurrencyAmount = strptr("")
	e.ConversionCharge = strptr("")

	// Nil and empty render identically in the canonical form.
	assert.Equal(t, withNils, Fingerprint(e))
	assert.NotEqual(t, withNils, Fingerprint(baseDraft()))
}

func TestFingerprintAmountCanonicalForm(t *testing.T) {
	a := baseDraft()
	a.Amount = 100

	b := baseDraft()
	b.Amount = 100.0

	// 100 and 100.0 are the same float64; identical value, identical hash.
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}
