package revisor

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchLedger = `#ORGNR 556000-1234
#FNAMN "Acme AB"
#KONTO 2440 "Leverantörsskulder"
#VER "A" "1" 20240110 "Hyra januari"
#TRANS 5010 {} 12000
#TRANS 2440 {} -12000
#VER "A" "2" 20240204 "IT-konsultation"
#TRANS 4000 {} 1500
#TRANS 2440 {} -1500
#VER "A" "3" 20240301 "IT-konsultation igen"
#TRANS 4000 {} 1500
#TRANS 2440 {} -1500
`

func TestFindMatchingVoucher(t *testing.T) {
	doc := ParseSIE(strings.NewReader(matchLedger))

	v := FindMatchingVoucher(doc, decimal.NewFromInt(1500), "2440", "")
	require.NotNil(t, v)
	assert.Equal(t, "2", v.Number, "first voucher in document order wins")

	// Sign of the claimed amount is irrelevant; matching is on magnitude.
	neg := FindMatchingVoucher(doc, decimal.NewFromInt(-1500), "2440", "")
	require.NotNil(t, neg)
	assert.Equal(t, "2", neg.Number)
}

func TestFindMatchingVoucherRoundTrip(t *testing.T) {
	ledger := `#VER "A" "1" 20240101 "Inköp"
#TRANS 2440 {} -1500
`
	doc := ParseSIE(strings.NewReader(ledger))
	v := FindMatchingVoucher(doc, decimal.NewFromInt(1500), "2440", "")
	require.NotNil(t, v)
	assert.Equal(t, "1", v.Number)
}

func TestFindMatchingVoucherDateNarrows(t *testing.T) {
	doc := ParseSIE(strings.NewReader(matchLedger))

	v := FindMatchingVoucher(doc, decimal.NewFromInt(1500), "2440", "20240301")
	require.NotNil(t, v)
	assert.Equal(t, "3", v.Number)

	assert.Nil(t, FindMatchingVoucher(doc, decimal.NewFromInt(1500), "2440", "20231231"))
}

func TestFindMatchingVoucherAbsent(t *testing.T) {
	doc := ParseSIE(strings.NewReader(matchLedger))

	assert.Nil(t, FindMatchingVoucher(doc, decimal.NewFromInt(9999), "2440", ""))
	assert.Nil(t, FindMatchingVoucher(doc, decimal.NewFromInt(12000), "1930", ""), "amount exists but not on the control account")
	assert.Nil(t, FindMatchingVoucher(doc, decimal.NewFromInt(1500), "", ""))
	assert.Nil(t, FindMatchingVoucher(nil, decimal.NewFromInt(1500), "2440", ""))
}
