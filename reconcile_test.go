package revisor

import (
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioNarrative = "[RISK: Entity X, Total 50000 SEK]\n[JOURNAL: {\"entries\":[{\"account\":\"1930\",\"description\":\"Bank\",\"debit\":0,\"credit\":50000},{\"account\":\"4000\",\"description\":\"Purchase\",\"debit\":50000,\"credit\":0}]}]"

func TestReconcileMaterialRiskWithBalancedJournal(t *testing.T) {
	res := Reconcile(scenarioNarrative, "", DefaultPolicy())

	require.NotNil(t, res.Finding)
	assert.Equal(t, TagRisk, res.Finding.Type)
	assert.True(t, res.Finding.IsMaterial)

	require.NotNil(t, res.Journal)
	assert.True(t, res.Journal.Balanced)
	assert.Empty(t, res.JournalError)

	sum := sha256.Sum256([]byte(scenarioNarrative))
	assert.Equal(t, hex.EncodeToString(sum[:]), res.IntegrityHash)
	assert.Len(t, res.IntegrityHash, 64)
}

func TestReconcileUnbalancedJournal(t *testing.T) {
	narrative := strings.Replace(scenarioNarrative, "\"credit\":50000", "\"credit\":45000", 1)
	res := Reconcile(narrative, "", DefaultPolicy())

	require.NotNil(t, res.Journal)
	assert.False(t, res.Journal.Balanced)
	assert.True(t, res.Journal.Difference().Equal(decimal.NewFromInt(5000)),
		"difference = %s, want 5000", res.Journal.Difference())
}

func TestReconcileBelowMateriality(t *testing.T) {
	pol := DefaultPolicy()
	pol.MaterialityThreshold = decimal.NewFromInt(100000)
	res := Reconcile(scenarioNarrative, "", pol)
	require.NotNil(t, res.Finding)
	assert.False(t, res.Finding.IsMaterial)
}

func TestReconcileExplicitMaterialMarker(t *testing.T) {
	res := Reconcile("[RISK: material misstatement suspected, no figures available]", "", DefaultPolicy())
	require.NotNil(t, res.Finding)
	assert.True(t, res.Finding.IsMaterial)
}

func TestReconcileGarbledJournalDegrades(t *testing.T) {
	narrative := "[MEMO: receipt only]\n[JOURNAL: {entries: oops]}]"
	res := Reconcile(narrative, "", DefaultPolicy())

	require.NotNil(t, res.Finding, "finding survives a garbled journal")
	assert.Nil(t, res.Journal)
	assert.NotEmpty(t, res.JournalError)
	assert.NotEmpty(t, res.JournalRaw, "raw payload retained for manual correction")
	assert.NotEmpty(t, res.IntegrityHash)
}

func TestReconcilePlainTextDegrades(t *testing.T) {
	res := Reconcile("nothing tagged in here", "", DefaultPolicy())
	assert.Nil(t, res.Finding)
	assert.Nil(t, res.Journal)
	assert.Nil(t, res.MatchedVoucher)
	assert.NotEmpty(t, res.IntegrityHash, "hash is always present")
}

func TestReconcileIdempotent(t *testing.T) {
	a := Reconcile(scenarioNarrative, matchLedger, DefaultPolicy())
	b := Reconcile(scenarioNarrative, matchLedger, DefaultPolicy())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different results\n a: %+v\n b: %+v", a, b)
	}
}

func TestReconcileLedgerMatch(t *testing.T) {
	narrative := "[ENTRY: IT-konsultation, 1500 SEK]\n[JOURNAL: {\"entries\":[{\"account\":\"4000\",\"description\":\"Konsult\",\"debit\":1500,\"credit\":0},{\"account\":\"2440\",\"description\":\"Skuld\",\"debit\":0,\"credit\":1500}]}]"
	res := Reconcile(narrative, matchLedger, DefaultPolicy())

	require.NotNil(t, res.MatchedVoucher)
	assert.Equal(t, "2", res.MatchedVoucher.Number)
	assert.Equal(t, "20240204", res.MatchedVoucher.Date)
}

func TestReconcileMatchFallsBackToFindingAmount(t *testing.T) {
	res := Reconcile("[RISK: unbooked payable of 12000 SEK]", matchLedger, DefaultPolicy())
	require.NotNil(t, res.MatchedVoucher)
	assert.Equal(t, "1", res.MatchedVoucher.Number)
}

func TestReconcileSynthesizesAnomalyFinding(t *testing.T) {
	// Digit-heavy amounts scattered through an untagged narrative.
	narrative := "[MEMO: summary]\namounts: 111 112 113 121 131 141 151 999 888 777 666 555"
	res := Reconcile(narrative, "", DefaultPolicy())

	require.True(t, res.Anomaly.Suspicious)
	require.NotEmpty(t, res.Findings)
	last := res.Findings[len(res.Findings)-1]
	assert.Equal(t, TagRisk, last.Type)
	assert.True(t, last.Synthetic, "analyzer finding is distinguishable from model findings")
	assert.Contains(t, last.Content, "Advisory")

	require.NotNil(t, res.Finding)
	assert.Equal(t, TagMemo, res.Finding.Type, "synthetic finding never displaces the primary")
}

func TestReconcileConcurrentSafety(t *testing.T) {
	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- Reconcile(scenarioNarrative, matchLedger, DefaultPolicy())
		}()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		if got := <-done; !reflect.DeepEqual(first, got) {
			t.Fatal("concurrent invocations disagree")
		}
	}
}

func TestIsMaterialContent(t *testing.T) {
	threshold := decimal.NewFromInt(50000)
	assert.True(t, IsMaterialContent("Total 50000 SEK", threshold))
	assert.True(t, IsMaterialContent("Total 50000.00 SEK", threshold))
	assert.False(t, IsMaterialContent("Total 49999 SEK", threshold))
	assert.False(t, IsMaterialContent("no amounts here", threshold))
	assert.True(t, IsMaterialContent("clearly a MATERIAL issue", threshold))
}
