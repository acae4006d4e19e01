package revisor

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultAnomalyThreshold is the mean-absolute-deviation above which a sample
// is flagged. Policy constant, overridable per call through Policy.
const DefaultAnomalyThreshold = 0.015

// minDigitSamples is the floor below which no verdict is fabricated.
const minDigitSamples = 10

// benfordReference is the expected frequency of leading digits 1..9 in
// naturally occurring numeric data.
var benfordReference = [9]float64{0.301, 0.176, 0.125, 0.097, 0.079, 0.067, 0.058, 0.051, 0.046}

// AnomalyReport is the advisory output of the leading-digit test. A
// suspicious flag is a heuristic signal for manual review, never proof of
// fabricated amounts on its own.
type AnomalyReport struct {
	Suspicious  bool        `json:"suspicious"`
	Score       float64     `json:"score"`
	SampleSize  int         `json:"sample_size"`
	DigitCounts map[int]int `json:"digit_counts"`
}

// AnalyzeAmounts tests a sample of amounts against the expected leading-digit
// distribution. The score is the mean absolute deviation of the observed
// frequencies across the nine digit bins; samples smaller than ten usable
// amounts produce a deterministic zero-score, non-suspicious report.
//
// Non-positive amounts and magnitudes whose first significant digit is not in
// 1..9 are excluded from the sample rather than guessed into a bin.
func AnalyzeAmounts(amounts []decimal.Decimal, threshold float64) AnomalyReport {
	report := AnomalyReport{DigitCounts: make(map[int]int, 9)}

	for _, amount := range amounts {
		digit := leadingDigit(amount)
		if digit == 0 {
			continue
		}
		report.DigitCounts[digit]++
		report.SampleSize++
	}

	if report.SampleSize < minDigitSamples {
		return report
	}

	total := float64(report.SampleSize)
	var deviation float64
	for digit := 1; digit <= 9; digit++ {
		observed := float64(report.DigitCounts[digit]) / total
		deviation += math.Abs(observed - benfordReference[digit-1])
	}
	report.Score = deviation / 9
	report.Suspicious = report.Score > threshold
	return report
}

// leadingDigit returns the first significant decimal digit (1..9) of the
// amount's absolute value, or 0 when the amount has none (zero amounts, or
// sub-one magnitudes like 0.05 whose leading digit would be ambiguous).
func leadingDigit(amount decimal.Decimal) int {
	abs := amount.Abs()
	if !abs.GreaterThanOrEqual(decimal.New(1, 0)) {
		return 0
	}
	for _, r := range abs.String() {
		if r >= '1' && r <= '9' {
			return int(r - '0')
		}
		if r == '.' {
			break
		}
	}
	return 0
}
