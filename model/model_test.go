package model

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestReportRecordKeepsStatsInvariant(t *testing.T) {
	r := NewReport("run-1", Collection{TotalNFTs: 5})

	r.Record(Outcome{Kind: OutcomeNoMetadata, TokenID: 0, SourceURI: "https://gw/0"})
	r.Record(Outcome{Kind: OutcomeNoAssetReference, TokenID: 1})
	r.Record(Outcome{Kind: OutcomeDownloaded, TokenID: 2, SourceURI: "https://gw/2"})
	r.Record(Outcome{Kind: OutcomeSkipped, TokenID: 3})
	r.Record(Outcome{Kind: OutcomeFailed, TokenID: 4, Err: errors.New("boom")})
	r.Record(Outcome{Kind: OutcomeFailed, TokenID: 5})

	s := r.Stats
	if s.Processed != s.Downloaded+s.Skipped+s.Failed {
		t.Errorf("processed %d != %d+%d+%d", s.Processed, s.Downloaded, s.Skipped, s.Failed)
	}
	if got := s.NoMetadata + s.NoImage + s.Processed; got != s.TotalNFTs+1 {
		t.Errorf("bucket total = %d, want %d", got, s.TotalNFTs+1)
	}
	if r.Failed[0].Error != "boom" {
		t.Errorf("failed error = %q", r.Failed[0].Error)
	}
	if r.Failed[1].Error != "unknown error" {
		t.Errorf("nil error text = %q", r.Failed[1].Error)
	}
}

func TestNewReportEncodesEmptyLists(t *testing.T) {
	data, err := json.Marshal(NewReport("run-1", Collection{TotalNFTs: 1}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"successful", "failed", "skipped", "noMetadata", "noImage"} {
		if string(decoded[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, decoded[key])
		}
	}
}

func TestHasAttributes(t *testing.T) {
	cases := map[string]bool{
		``:                         false,
		`null`:                     false,
		`[]`:                       true,
		`[{"trait_type":"Eyes"}]`: true,
	}
	for raw, want := range cases {
		m := TokenMetadata{Attributes: json.RawMessage(raw)}
		if got := m.HasAttributes(); got != want {
			t.Errorf("HasAttributes(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestOpenDatabaseMigrates(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	run := SweepRun{
		ID:       "run-1",
		Outcomes: []TokenOutcome{{TokenID: 3, Outcome: string(OutcomeSkipped)}},
	}
	if err := db.Create(&run).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var count int64
	if err := db.Model(&TokenOutcome{}).Where("run_id = ?", "run-1").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("outcome rows = %d, want 1", count)
	}
}
