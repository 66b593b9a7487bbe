package model

import (
	"encoding/json"
	"time"
)

// Collection is the immutable run configuration for one sweep.
type Collection struct {
	ChainID         string
	ContractAddress string
	APIKey          string
	BaseURI         string
	TotalNFTs       int
	OutputDir       string
}

// TokenMetadata is the metadata document an indexer returns for one token.
// Attributes are passed through verbatim and never interpreted.
type TokenMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// HasAttributes reports whether the document carried a non-null attributes value.
func (m *TokenMetadata) HasAttributes() bool {
	return len(m.Attributes) > 0 && string(m.Attributes) != "null"
}

type OutcomeKind string

const (
	OutcomeDownloaded       OutcomeKind = "downloaded"
	OutcomeSkipped          OutcomeKind = "skipped"
	OutcomeFailed           OutcomeKind = "failed"
	OutcomeNoMetadata       OutcomeKind = "no_metadata"
	OutcomeNoAssetReference OutcomeKind = "no_image"
)

// Outcome is the single categorized result of processing one token.
type Outcome struct {
	Kind      OutcomeKind
	TokenID   int
	SourceURI string
	CID       string
	Err       error
}

type SuccessEntry struct {
	TokenID int    `json:"tokenId"`
	URI     string `json:"uri"`
	CID     string `json:"cid,omitempty"`
}

type FailedEntry struct {
	TokenID int    `json:"tokenId"`
	Error   string `json:"error"`
	URI     string `json:"uri"`
}

type SkippedEntry struct {
	TokenID int `json:"tokenId"`
}

type NoMetadataEntry struct {
	TokenID int    `json:"tokenId"`
	URI     string `json:"uri"`
}

type Stats struct {
	TotalNFTs  int `json:"totalNFTs"`
	Processed  int `json:"processed"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	NoMetadata int `json:"noMetadata"`
	NoImage    int `json:"noImage"`
}

// Report is the aggregate of one sweep. It is built only by the pipeline
// and is not modified after the sweep returns it.
type Report struct {
	RunID           string            `json:"runId"`
	ChainID         string            `json:"chainId"`
	ContractAddress string            `json:"contractAddress"`
	StartedAt       time.Time         `json:"startedAt"`
	FinishedAt      time.Time         `json:"finishedAt"`
	Successful      []SuccessEntry    `json:"successful"`
	Failed          []FailedEntry     `json:"failed"`
	Skipped         []SkippedEntry    `json:"skipped"`
	NoMetadata      []NoMetadataEntry `json:"noMetadata"`
	NoImage         []int             `json:"noImage"`
	Stats           Stats             `json:"stats"`
}

// NewReport returns an empty report whose lists encode as [] rather than null.
func NewReport(runID string, c Collection) *Report {
	return &Report{
		RunID:           runID,
		ChainID:         c.ChainID,
		ContractAddress: c.ContractAddress,
		Successful:      []SuccessEntry{},
		Failed:          []FailedEntry{},
		Skipped:         []SkippedEntry{},
		NoMetadata:      []NoMetadataEntry{},
		NoImage:         []int{},
		Stats:           Stats{TotalNFTs: c.TotalNFTs},
	}
}

// Record folds one outcome into the report.
func (r *Report) Record(o Outcome) {
	switch o.Kind {
	case OutcomeNoMetadata:
		r.NoMetadata = append(r.NoMetadata, NoMetadataEntry{TokenID: o.TokenID, URI: o.SourceURI})
		r.Stats.NoMetadata++
	case OutcomeNoAssetReference:
		r.NoImage = append(r.NoImage, o.TokenID)
		r.Stats.NoImage++
	case OutcomeDownloaded:
		r.Successful = append(r.Successful, SuccessEntry{TokenID: o.TokenID, URI: o.SourceURI, CID: o.CID})
		r.Stats.Processed++
		r.Stats.Downloaded++
	case OutcomeSkipped:
		r.Skipped = append(r.Skipped, SkippedEntry{TokenID: o.TokenID})
		r.Stats.Processed++
		r.Stats.Skipped++
	case OutcomeFailed:
		msg := "unknown error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		r.Failed = append(r.Failed, FailedEntry{TokenID: o.TokenID, Error: msg, URI: o.SourceURI})
		r.Stats.Processed++
		r.Stats.Failed++
	}
}

// SweepRun is one row per sweep in the run ledger.
type SweepRun struct {
	ID              string `gorm:"primaryKey"`
	ChainID         string
	ContractAddress string
	TotalNFTs       int
	Processed       int
	Downloaded      int
	Skipped         int
	Failed          int
	NoMetadata      int
	NoImage         int
	StartedAt       time.Time
	FinishedAt      time.Time
	ReportPath      string
	Outcomes        []TokenOutcome `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TokenOutcome is one row per token per sweep in the run ledger.
type TokenOutcome struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"index"`
	TokenID   int    `gorm:"index"`
	Outcome   string
	SourceURI string
	CID       string
	Error     string
}
