// Package vault builds the evidence records handed to the persistent store.
// The store itself is an external collaborator; this package only shapes the
// payload and declares the boundary it is written through.
package vault

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hwallberg/revisor"
)

// Record is one piece of audit evidence as the store expects it. ContentJSON
// is stored opaquely on the other side of the boundary, so everything a
// reviewer needs to reconstruct the analysis is nested inside it.
type Record struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	ContentJSON   map[string]any `json:"content_json"`
	IntegrityHash string         `json:"integrity_hash"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Store is the boundary to the external evidence store: insert, query ordered
// by recency, and change notification. Implemented outside this repository.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Subscribe(ctx context.Context) (<-chan Record, error)
}

// NewRecord shapes a reconciliation result into an evidence record. The full
// narrative rides along inside content_json so the integrity hash can be
// re-verified against it later.
func NewRecord(res revisor.Result, narrative, title string) Record {
	recordType := string(revisor.TagMemo)
	detail := "General document scan performed. No specific risks or entries flagged."
	material := false
	if res.Finding != nil {
		recordType = string(res.Finding.Type)
		detail = res.Finding.Content
		material = res.Finding.IsMaterial
	}

	content := map[string]any{
		"detail":        detail,
		"full_analysis": narrative,
		"is_material":   material,
		"anomaly":       res.Anomaly,
	}
	if res.Journal != nil {
		content["entries"] = res.Journal.Entries
		content["total_debit"] = res.Journal.TotalDebit
		content["total_credit"] = res.Journal.TotalCredit
		content["balanced"] = res.Journal.Balanced
	} else if res.JournalRaw != "" {
		content["journal_raw"] = res.JournalRaw
		content["journal_error"] = res.JournalError
	}
	if res.MatchedVoucher != nil {
		content["matched_voucher"] = res.MatchedVoucher
	}

	return Record{
		ID:            uuid.NewString(),
		Type:          recordType,
		Title:         title,
		ContentJSON:   content,
		IntegrityHash: res.IntegrityHash,
		CreatedAt:     time.Now().UTC(),
	}
}

// Marshal renders the record as indented JSON, the form the workpaper export
// writes and the store ingests.
func (r Record) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
