package revisor

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	ErrJournalSyntax    = errors.New("unable to parse journal payload")
	ErrJournalNoEntries = errors.New("journal payload has no entries")
	ErrJournalSchema    = errors.New("journal entry failed schema validation")
)

// balanceEpsilon absorbs floating-point rounding in upstream payloads, not
// genuine imbalance. Anything at or past a whole minor unit cent is reported.
var balanceEpsilon = decimal.NewFromFloat(0.01)

// JournalEntryLine is one validated line of a proposed journal entry.
type JournalEntryLine struct {
	Account     string          `json:"account"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalProposal is a schema-valid journal entry proposal. Balanced is a
// business-rule flag, not a validity gate: an unbalanced proposal is kept
// intact so it can be rendered for manual correction, and nothing here ever
// adjusts amounts to force a balance.
type JournalProposal struct {
	Entries     []JournalEntryLine `json:"entries"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Balanced    bool               `json:"balanced"`
}

// Difference returns total debits minus total credits.
func (p *JournalProposal) Difference() decimal.Decimal {
	return p.TotalDebit.Sub(p.TotalCredit)
}

// rawJournal mirrors the payload contract of the upstream model. Amounts
// arrive as JSON numbers and default to zero when a side is omitted.
type rawJournal struct {
	Entries []rawJournalEntry `json:"entries"`
}

type rawJournalEntry struct {
	Account     string  `json:"account" validate:"min=4"`
	Description string  `json:"description" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
}

var journalValidate = validator.New()

// ValidateJournal validates an untrusted journal payload in two stages.
// Stage one is a relaxed JSON5 parse: unquoted keys, trailing commas and
// comments are all tolerated, because the payload originates from free-text
// generation. Stage two is strict: every line needs an account of at least
// four characters, a description, and non-negative debit and credit.
// Validation is atomic; one bad line rejects the whole payload.
//
// Imbalance is not an error. A proposal whose debits and credits differ by
// 0.01 or more comes back with Balanced set to false.
func ValidateJournal(raw string) (*JournalProposal, error) {
	var parsed rawJournal
	if err := json5.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJournalSyntax, err)
	}
	if len(parsed.Entries) == 0 {
		return nil, ErrJournalNoEntries
	}

	proposal := &JournalProposal{
		Entries:     make([]JournalEntryLine, 0, len(parsed.Entries)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, entry := range parsed.Entries {
		if err := journalValidate.Struct(entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w: %v", i, ErrJournalSchema, err)
		}
		debit := decimal.NewFromFloat(entry.Debit)
		credit := decimal.NewFromFloat(entry.Credit)
		proposal.Entries = append(proposal.Entries, JournalEntryLine{
			Account:     entry.Account,
			Description: entry.Description,
			Debit:       debit,
			Credit:      credit,
		})
		proposal.TotalDebit = proposal.TotalDebit.Add(debit)
		proposal.TotalCredit = proposal.TotalCredit.Add(credit)
	}

	proposal.Balanced = proposal.Difference().Abs().LessThan(balanceEpsilon)
	return proposal, nil
}

// LargestAmount returns the largest absolute debit or credit across all
// lines, for cross-referencing the proposal against a ledger.
func (p *JournalProposal) LargestAmount() decimal.Decimal {
	largest := decimal.Zero
	for _, e := range p.Entries {
		if e.Debit.Abs().GreaterThan(largest) {
			largest = e.Debit.Abs()
		}
		if e.Credit.Abs().GreaterThan(largest) {
			largest = e.Credit.Abs()
		}
	}
	return largest
}
