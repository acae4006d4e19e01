package revisor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Finding is one classified observation about the analyzed document.
// Synthetic marks findings generated by this pipeline's own analysis, as
// opposed to findings extracted from the upstream model's narrative.
type Finding struct {
	Type       TagType `json:"type"`
	Content    string  `json:"content"`
	IsMaterial bool    `json:"is_material"`
	Synthetic  bool    `json:"synthetic,omitempty"`
}

// Policy carries the tunable constants of a reconciliation run. It is passed
// per call so tests and callers can vary policy without process-wide state.
type Policy struct {
	MaterialityThreshold decimal.Decimal
	AnomalyThreshold     float64
	ControlAccount       string
}

// DefaultPolicy returns the shipped policy: 50000 materiality in the ledger
// currency, the default digit-test threshold, and accounts payable (2440) as
// the control account.
func DefaultPolicy() Policy {
	return Policy{
		MaterialityThreshold: decimal.NewFromInt(50000),
		AnomalyThreshold:     DefaultAnomalyThreshold,
		ControlAccount:       "2440",
	}
}

// Result is the output of one reconciliation. The integrity hash is always
// present; every other part degrades independently when its input is missing
// or garbled.
type Result struct {
	IntegrityHash  string           `json:"integrity_hash"`
	Finding        *Finding         `json:"finding,omitempty"`
	Findings       []Finding        `json:"findings,omitempty"`
	Journal        *JournalProposal `json:"journal,omitempty"`
	JournalRaw     string           `json:"journal_raw,omitempty"`
	JournalError   string           `json:"journal_error,omitempty"`
	Anomaly        AnomalyReport    `json:"anomaly"`
	MatchedVoucher *Voucher         `json:"matched_voucher,omitempty"`
}

// Reconcile turns a model-generated narrative, and optionally the text of a
// SIE export for cross-referencing, into verified artifacts. It is a pure
// function of its inputs and the policy: no I/O, no state across calls, safe
// to run concurrently for independent documents.
//
// The integrity hash covers the verbatim narrative as produced upstream,
// establishing what was analyzed, not what was derived. Malformed input never
// aborts the run; parts that cannot be recovered are simply absent from the
// result.
func Reconcile(narrative, ledgerText string, pol Policy) Result {
	sum := sha256.Sum256([]byte(narrative))
	res := Result{IntegrityHash: hex.EncodeToString(sum[:])}

	journalRaw := ""
	haveJournal := false
	for _, tag := range ExtractTags(narrative) {
		if tag.Type == TagJournal {
			if !haveJournal {
				journalRaw = tag.Content
				haveJournal = true
			}
			continue
		}
		res.Findings = append(res.Findings, Finding{Type: tag.Type, Content: tag.Content})
	}

	if haveJournal {
		res.JournalRaw = journalRaw
		journal, err := ValidateJournal(journalRaw)
		if err != nil {
			// Surface "no journal" and keep the raw payload around for
			// manual correction instead of failing the reconciliation.
			res.JournalError = err.Error()
		} else {
			res.Journal = journal
		}
	}

	res.Anomaly = AnalyzeAmounts(scanAmounts(narrative), pol.AnomalyThreshold)
	if res.Anomaly.Suspicious {
		res.Findings = append(res.Findings, Finding{
			Type: TagRisk,
			Content: fmt.Sprintf(
				"Leading-digit distribution deviates %.1f%% on average from the expected natural distribution over %d sampled amounts. Advisory signal only; review the source amounts.",
				res.Anomaly.Score*100, res.Anomaly.SampleSize),
			Synthetic: true,
		})
	}

	// First non-journal extracted segment is authoritative; later segments
	// and synthetic findings stay available for audit.
	if len(res.Findings) > 0 && !res.Findings[0].Synthetic {
		res.Findings[0].IsMaterial = IsMaterialContent(res.Findings[0].Content, pol.MaterialityThreshold)
		res.Finding = &res.Findings[0]
	}

	if ledgerText != "" {
		if amount := matchAmount(res); amount.IsPositive() {
			doc := ParseSIE(strings.NewReader(ledgerText))
			res.MatchedVoucher = FindMatchingVoucher(doc, amount, pol.ControlAccount, "")
		}
	}

	return res
}

// matchAmount picks the amount to cross-reference against the ledger: the
// journal's largest absolute amount when a journal exists, otherwise the
// largest amount mentioned in the authoritative finding.
func matchAmount(res Result) decimal.Decimal {
	if res.Journal != nil {
		return res.Journal.LargestAmount()
	}
	if res.Finding != nil {
		return largestAmount(scanAmounts(res.Finding.Content))
	}
	return decimal.Zero
}

// IsMaterialContent reports whether finding content warrants escalation:
// either it mentions a monetary amount at or above the threshold, or it
// carries an explicit material marker.
func IsMaterialContent(content string, threshold decimal.Decimal) bool {
	if strings.Contains(strings.ToUpper(content), "MATERIAL") {
		return true
	}
	if !threshold.IsPositive() {
		return false
	}
	return largestAmount(scanAmounts(content)).GreaterThanOrEqual(threshold)
}

// amountTokenRe matches monetary-looking tokens. Comma decimals are
// normalized; space-grouped thousands are not recognized, since a regex
// cannot tell "10 000" from two adjacent numbers.
var amountTokenRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// scanAmounts is a best-effort numeric scan over free text. It keeps every
// positive token it can parse; it does not try to tell amounts from dates or
// reference numbers, which is acceptable for the advisory digit test.
func scanAmounts(text string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, token := range amountTokenRe.FindAllString(text, -1) {
		token = strings.ReplaceAll(token, ",", ".")
		amount, err := decimal.NewFromString(token)
		if err != nil || !amount.IsPositive() {
			continue
		}
		amounts = append(amounts, amount)
	}
	return amounts
}

func largestAmount(amounts []decimal.Decimal) decimal.Decimal {
	largest := decimal.Zero
	for _, a := range amounts {
		if a.GreaterThan(largest) {
			largest = a
		}
	}
	return largest
}
