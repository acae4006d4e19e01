package revisor

import (
	"github.com/shopspring/decimal"
)

// Account is one row of the chart of accounts in a SIE document.
type Account struct {
	Code string
	Name string
}

// Transaction is a single #TRANS row belonging to a voucher. The sign of
// Amount follows the SIE convention (positive debit-leaning, negative
// credit-leaning) and is preserved as exported, never renormalized.
type Transaction struct {
	Account     string
	Amount      decimal.Decimal
	Description string
}

// Voucher is a dated grouping of transactions, opened by a #VER header and
// closed by the next header or end of input. Transactions keep document order.
type Voucher struct {
	Series       string
	Number       string
	Date         string // YYYYMMDD as written in the file
	Text         string
	Transactions []Transaction
}

// Balance sums the voucher's transaction amounts. A well-formed voucher
// balances to zero, but exports are not trusted to guarantee it.
func (v *Voucher) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, t := range v.Transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// Document is the parsed form of one SIE export. It is owned by the caller
// after parsing and is not mutated by anything in this package afterwards.
type Document struct {
	OrgNr    string
	Name     string
	Accounts []Account
	Vouchers []Voucher
}

// AccountName returns the name of the last definition of code, or "" when the
// chart does not define it. Duplicate #KONTO rows are kept in order by the
// parser; later definitions shadow earlier ones here.
func (d *Document) AccountName(code string) string {
	name := ""
	for _, a := range d.Accounts {
		if a.Code == code {
			name = a.Name
		}
	}
	return name
}
