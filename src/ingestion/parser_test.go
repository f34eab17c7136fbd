// src/ingestion/parser_test.go
package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() map[string]string {
	return map[string]string{
		colType:                  "POS",
		colDetails:               "COUNTDOWN AUCKLAND",
		colParticulars:           "CARD 1234",
		colCode:                  "4829",
		colReference:             "REF-001",
		colAmount:                "-45.67",
		colDate:                  "15/03/2025",
		colForeignCurrencyAmount: "",
		colConversionCharge:      "",
	}
}

func TestParseRowValid(t *testing.T) {
	draft, err := ParseRow(validRow(), 1)
	require.NoError(t, err)
	require.NotNil(t, draft)

	assert.Equal(t, "POS", draft.Type)
	require.NotNil(t, draft.Details)
	assert.Equal(t, "COUNTDOWN AUCKLAND", *draft.Details)
	assert.Equal(t, -45.67, draft.Amount)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), draft.Date)
	assert.Nil(t, draft.ForeignCurrencyAmount)
	assert.Nil(t, draft.ConversionCharge)
}

func TestParseRowBlankRowIsSkipped(t *testing.T) {
	row := map[string]string{
		colType:    "",
		colDetails: "",
		colAmount:  "",
		colDate:    "15/03/2025",
	}
	draft, err := ParseRow(row, 3)
	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestParseRowMissingRequiredFields(t *testing.T) {
	cases := map[string]func(map[string]string){
		"no type":    func(r map[string]string) { r[colType] = "" },
		"no amount":  func(r map[string]string) { r[colAmount] = "" },
		"no date":    func(r map[string]string) { r[colDate] = "" },
		"no details": func(r map[string]string) { delete(r, colDetails) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			row := validRow()
			mutate(row)

			draft, err := ParseRow(row, 7)
			assert.Nil(t, draft)
			require.Error(t, err)

			var vErr *RowValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, 7, vErr.Row)
			assert.Contains(t, vErr.Message, "Missing required fields")
			assert.Contains(t, vErr.Message, "row 7")
		})
	}
}

func TestParseRowEmptyDetailsColumnIsLegal(t *testing.T) {
	// Details present in the export but empty for this row. That is a valid
	// row with a null Details value, not a missing-field error.
	row := validRow()
	row[colDetails] = ""

	draft, err := ParseRow(row, 2)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Nil(t, draft.Details)
}

func TestParseRowDateValidation(t *testing.T) {
	invalid := []string{
		"31/02/2025", // February has no 31st
		"29/02/2023", // not a leap year
		"2025-03-31", // ISO format not accepted
		"03/31/2025", // US ordering
		"00/01/2025",
		"15/13/2025",
		"15/03/1899",
		"15/03/2101",
		"15/03",
		"garbage",
	}
	for _, dateStr := range invalid {
		t.Run(dateStr, func(t *testing.T) {
			row := validRow()
			row[colDate] = dateStr

			draft, err := ParseRow(row, 4)
			assert.Nil(t, draft)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Invalid date format")
			assert.Contains(t, err.Error(), dateStr)
		})
	}

	t.Run("29/02/2024 leap day accepted", func(t *testing.T) {
		row := validRow()
		row[colDate] = "29/02/2024"

		draft, err := ParseRow(row, 4)
		require.NoError(t, err)
		require.NotNil(t, draft)
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), draft.Date)
	})
}

func TestParseRowInvalidAmount(t *testing.T) {
	row := validRow()
	row[colAmount] = "12,50"

	draft, err := ParseRow(row, 5)
	assert.Nil(t, draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount '12,50' in row 5")
}

func TestParseRowTrimsWhitespace(t *testing.T) {
	row := validRow()
	row[colType] = "  POS  "
	row[colAmount] = " -45.67 "
	row[colDate] = " 15/03/2025 "
	row[colParticulars] = "   "

	draft, err := ParseRow(row, 1)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "POS", draft.Type)
	assert.Equal(t, -45.67, draft.Amount)
	assert.Nil(t, draft.Particulars, "whitespace-only optional field becomes null")
}
