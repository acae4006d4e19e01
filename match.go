package revisor

import (
	"github.com/shopspring/decimal"
)

// FindMatchingVoucher scans vouchers in document order for the first one
// containing a transaction on the control account whose absolute amount
// exactly equals the absolute amount sought. Ledger amounts are already
// quantized, so no tolerance applies. A non-empty date (YYYYMMDD) narrows the
// scan to vouchers on that date. Returns nil when nothing matches.
//
// This is a linear O(vouchers x transactions) scan, which is fine at the
// ledger sizes a single engagement produces. The contract allows a future
// index by account without changing the signature.
func FindMatchingVoucher(doc *Document, amount decimal.Decimal, controlAccount, date string) *Voucher {
	if doc == nil || controlAccount == "" {
		return nil
	}
	target := amount.Abs()
	for i := range doc.Vouchers {
		v := &doc.Vouchers[i]
		if date != "" && v.Date != date {
			continue
		}
		for _, t := range v.Transactions {
			if t.Account == controlAccount && t.Amount.Abs().Equal(target) {
				return v
			}
		}
	}
	return nil
}
