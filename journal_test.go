package revisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const balancedPayload = `{"entries":[
	{"account":"1930","description":"Bank","debit":0,"credit":50000},
	{"account":"4000","description":"Purchase","debit":50000,"credit":0}
]}`

func TestValidateJournalBalanced(t *testing.T) {
	journal, err := ValidateJournal(balancedPayload)
	require.NoError(t, err)
	require.Len(t, journal.Entries, 2)
	assert.True(t, journal.Balanced)
	assert.True(t, journal.TotalDebit.Equal(decimal.NewFromInt(50000)))
	assert.True(t, journal.TotalCredit.Equal(decimal.NewFromInt(50000)))
	assert.True(t, journal.Difference().IsZero())
}

func TestValidateJournalUnbalanced(t *testing.T) {
	payload := `{"entries":[
		{"account":"1930","description":"Bank","debit":0,"credit":45000},
		{"account":"4000","description":"Purchase","debit":50000,"credit":0}
	]}`
	journal, err := ValidateJournal(payload)
	require.NoError(t, err, "imbalance is a flag, not a validation failure")
	assert.False(t, journal.Balanced)
	assert.True(t, journal.Difference().Equal(decimal.NewFromInt(5000)),
		"difference = %s, want 5000", journal.Difference())
	require.Len(t, journal.Entries, 2, "unbalanced proposal is retained intact")
}

func TestValidateJournalWithinEpsilon(t *testing.T) {
	payload := `{"entries":[
		{"account":"1930","description":"Bank","debit":0,"credit":100.004},
		{"account":"4000","description":"Purchase","debit":100,"credit":0}
	]}`
	journal, err := ValidateJournal(payload)
	require.NoError(t, err)
	assert.True(t, journal.Balanced, "sub-cent rounding noise must not flag imbalance")
}

func TestValidateJournalRelaxedSyntax(t *testing.T) {
	payload := `{
		// proposed by the reviewing model
		entries: [
			{account: "6540", description: 'IT services', debit: 1250.50, credit: 0,},
			{account: "2440", description: 'Payable', credit: 1250.50,},
		],
	}`
	journal, err := ValidateJournal(payload)
	require.NoError(t, err)
	require.Len(t, journal.Entries, 2)
	assert.True(t, journal.Balanced)
	assert.True(t, journal.Entries[1].Debit.IsZero(), "missing debit defaults to zero")
}

func TestValidateJournalRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not parseable", "certainly not json", ErrJournalSyntax},
		{"missing entries", `{"rows": []}`, ErrJournalNoEntries},
		{"empty entries", `{"entries": []}`, ErrJournalNoEntries},
		{"short account code", `{"entries":[{"account":"193","description":"Bank","debit":1,"credit":0}]}`, ErrJournalSchema},
		{"empty description", `{"entries":[{"account":"1930","description":"","debit":1,"credit":0}]}`, ErrJournalSchema},
		{"negative debit", `{"entries":[{"account":"1930","description":"Bank","debit":-1,"credit":0}]}`, ErrJournalSchema},
		{"negative credit", `{"entries":[{"account":"1930","description":"Bank","debit":0,"credit":-1}]}`, ErrJournalSchema},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			journal, err := ValidateJournal(tc.payload)
			assert.Nil(t, journal)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateJournalAtomic(t *testing.T) {
	payload := `{"entries":[
		{"account":"1930","description":"Bank","debit":0,"credit":100},
		{"account":"40","description":"Too short","debit":100,"credit":0}
	]}`
	journal, err := ValidateJournal(payload)
	assert.Nil(t, journal, "partial acceptance is not permitted")
	assert.ErrorIs(t, err, ErrJournalSchema)
}

func TestJournalLargestAmount(t *testing.T) {
	journal, err := ValidateJournal(balancedPayload)
	require.NoError(t, err)
	assert.True(t, journal.LargestAmount().Equal(decimal.NewFromInt(50000)))

	empty := &JournalProposal{}
	assert.True(t, empty.LargestAmount().IsZero())
}
