package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwallberg/revisor"
)

func TestNewRecordFromFinding(t *testing.T) {
	narrative := "[RISK: Entity X, Total 50000 SEK]\n[JOURNAL: {\"entries\":[{\"account\":\"1930\",\"description\":\"Bank\",\"debit\":0,\"credit\":50000},{\"account\":\"4000\",\"description\":\"Purchase\",\"debit\":50000,\"credit\":0}]}]"
	res := revisor.Reconcile(narrative, "", revisor.DefaultPolicy())

	rec := NewRecord(res, narrative, "AI Finding: invoice-2024-001.pdf")
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "RISK", rec.Type)
	assert.Equal(t, res.IntegrityHash, rec.IntegrityHash)
	assert.Equal(t, narrative, rec.ContentJSON["full_analysis"])
	assert.Equal(t, "Entity X, Total 50000 SEK", rec.ContentJSON["detail"])
	assert.Equal(t, true, rec.ContentJSON["is_material"])
	assert.Contains(t, rec.ContentJSON, "entries")
	assert.Equal(t, true, rec.ContentJSON["balanced"])

	data, err := rec.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"integrity_hash"`)
}

func TestNewRecordFallsBackToMemo(t *testing.T) {
	narrative := "nothing tagged here"
	res := revisor.Reconcile(narrative, "", revisor.DefaultPolicy())

	rec := NewRecord(res, narrative, "OCR Scan: misc.pdf")
	assert.Equal(t, "MEMO", rec.Type)
	assert.NotContains(t, rec.ContentJSON, "entries")
	assert.Equal(t, res.IntegrityHash, rec.IntegrityHash)
}

func TestNewRecordKeepsGarbledJournal(t *testing.T) {
	narrative := "[ENTRY: booked]\n[JOURNAL: {entries: oops}]"
	res := revisor.Reconcile(narrative, "", revisor.DefaultPolicy())

	rec := NewRecord(res, narrative, "AI Finding: broken.pdf")
	assert.Equal(t, "ENTRY", rec.Type)
	assert.Contains(t, rec.ContentJSON, "journal_raw")
	assert.Contains(t, rec.ContentJSON, "journal_error")
}
