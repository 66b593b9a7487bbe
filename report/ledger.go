package report

import (
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"nft-sweeper/model"
)

// Ledger keeps one row per sweep and one row per token outcome in a gorm
// database, next to the JSON report.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// OpenLedger opens (and migrates) the sqlite database at dsn.
func OpenLedger(dsn string) (*Ledger, error) {
	db, err := model.OpenDatabase(dsn)
	if err != nil {
		return nil, err
	}
	return NewLedger(db), nil
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores a finished report. The run and its outcomes are written in
// one transaction.
func (l *Ledger) Record(r *model.Report, reportPath string) error {
	run := model.SweepRun{
		ID:              r.RunID,
		ChainID:         r.ChainID,
		ContractAddress: r.ContractAddress,
		TotalNFTs:       r.Stats.TotalNFTs,
		Processed:       r.Stats.Processed,
		Downloaded:      r.Stats.Downloaded,
		Skipped:         r.Stats.Skipped,
		Failed:          r.Stats.Failed,
		NoMetadata:      r.Stats.NoMetadata,
		NoImage:         r.Stats.NoImage,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		ReportPath:      reportPath,
		Outcomes:        outcomeRows(r),
	}
	if err := l.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&run).Error
	}); err != nil {
		return xerrors.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

// Runs returns the most recent sweeps, newest first.
func (l *Ledger) Runs(limit int) ([]model.SweepRun, error) {
	var runs []model.SweepRun
	q := l.db.Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, xerrors.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Outcomes returns the per-token rows of one sweep ordered by token id.
func (l *Ledger) Outcomes(runID string) ([]model.TokenOutcome, error) {
	var rows []model.TokenOutcome
	if err := l.db.Where("run_id = ?", runID).Order("token_id").Find(&rows).Error; err != nil {
		return nil, xerrors.Errorf("list outcomes for %s: %w", runID, err)
	}
	return rows, nil
}

func outcomeRows(r *model.Report) []model.TokenOutcome {
	var rows []model.TokenOutcome
	for _, e := range r.Successful {
		rows = append(rows, model.TokenOutcome{TokenID: e.TokenID, Outcome: string(model.OutcomeDownloaded), SourceURI: e.URI, CID: e.CID})
	}
	for _, e := range r.Skipped {
		rows = append(rows, model.TokenOutcome{TokenID: e.TokenID, Outcome: string(model.OutcomeSkipped)})
	}
	for _, e := range r.Failed {
		rows = append(rows, model.TokenOutcome{TokenID: e.TokenID, Outcome: string(model.OutcomeFailed), SourceURI: e.URI, Error: e.Error})
	}
	for _, e := range r.NoMetadata {
		rows = append(rows, model.TokenOutcome{TokenID: e.TokenID, Outcome: string(model.OutcomeNoMetadata), SourceURI: e.URI})
	}
	for _, id := range r.NoImage {
		rows = append(rows, model.TokenOutcome{TokenID: id, Outcome: string(model.OutcomeNoAssetReference)})
	}
	return rows
}
