package reconcile

import (
	"errors"
	"testing"

	"LowesMerge/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(header []string, rows ...[]string) *sheet.Table {
	return sheet.New(header, rows)
}

func TestCanonicalColumn(t *testing.T) {
	cases := map[string]string{
		"PO #":                                ColPONumber,
		"  PO Number ":                        ColPONumber,
		"Buyer Item #":                        ColItemCode,
		"Location #":                          ColShipTo,
		"Retailer’s PO Number":                ColInvoicePO,
		"Discounted Amounted_Discount Amount": ColDiscountAmount,
		"PO  Line #":                          ColLineNumber,
		"Something Else ":                     "Something Else",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalColumn(in), in)
	}
}

func TestNormalizeRenamesAndDedupes(t *testing.T) {
	raw := table([]string{"PO #", "Buyer Item #", "Location #", "BOL", "BOL"}, []string{"100", "71894", "1234", "B1", "B2"})
	got := Normalize(raw)
	assert.Equal(t, []string{ColPONumber, ColItemCode, ColShipTo, ColBOL, "BOL.1"}, got.Header)
	assert.Equal(t, "PO #", raw.Header[0], "input table is not modified")
}

func TestCheckOrderColumnsReportsEveryMissingName(t *testing.T) {
	err := CheckOrderColumns(Normalize(table([]string{"Qty Ordered", "Unit Price"})))
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{ColPONumber, ColLineNumber}, missing.Missing)
	assert.Contains(t, err.Error(), "PO Number")
	assert.Contains(t, err.Error(), "PO Line#")

	err = CheckOrderColumns(Normalize(table([]string{"PO #", "Qty Ordered"})))
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{ColLineNumber}, missing.Missing)

	assert.NoError(t, CheckOrderColumns(Normalize(table([]string{"PO Number", "PO Line#"}))))
}
