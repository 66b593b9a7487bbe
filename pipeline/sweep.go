// Package pipeline runs the sequential sweep over a collection's token ids.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"nft-sweeper/asset"
	"nft-sweeper/logger"
	"nft-sweeper/metadata"
	"nft-sweeper/model"
)

type AssetEnsurer interface {
	EnsureAsset(ctx context.Context, req asset.Request) (asset.Result, error)
}

// Sweeper owns the report for the duration of a run. Collaborators only
// return outcomes; Sweeper folds them in.
type Sweeper struct {
	col    model.Collection
	meta   metadata.Provider
	assets AssetEnsurer
	pacer  Pacer
	log    logger.Logger

	// Observe, when set, is called with every outcome as it is recorded.
	Observe func(model.Outcome)

	now   func() time.Time
	newID func() string
}

func New(col model.Collection, meta metadata.Provider, assets AssetEnsurer, pacer Pacer, log logger.Logger) *Sweeper {
	if pacer == nil {
		pacer = FixedDelay(0)
	}
	return &Sweeper{
		col:    col,
		meta:   meta,
		assets: assets,
		pacer:  pacer,
		log:    log,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Run initializes the metadata provider and processes token ids
// 0..TotalNFTs inclusive, one at a time. Per-token failures are recorded in
// the report; only a provider initialization failure aborts the run. If ctx
// is cancelled the sweep stops between tokens and the partial report is
// returned together with the context error.
func (s *Sweeper) Run(ctx context.Context) (*model.Report, error) {
	report := model.NewReport(s.newID(), s.col)
	report.StartedAt = s.now().UTC()

	if err := s.meta.Initialize(ctx); err != nil {
		s.log.Error("Fatal", fmt.Sprintf("Download process failed: %v", err))
		return nil, xerrors.Errorf("initialize metadata provider: %w", err)
	}

	var stopErr error
	for tokenID := 0; tokenID <= s.col.TotalNFTs; tokenID++ {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		s.log.Info("Progress", fmt.Sprintf("Processing NFT %d/%d", tokenID, s.col.TotalNFTs))

		outcome := s.processToken(ctx, tokenID)
		report.Record(outcome)
		if s.Observe != nil {
			s.Observe(outcome)
		}

		if tokenID == s.col.TotalNFTs {
			break
		}
		s.log.Info("Rate Limit", "Waiting before next request...")
		if err := s.pacer.Wait(ctx); err != nil {
			stopErr = err
			break
		}
	}

	report.FinishedAt = s.now().UTC()
	if stopErr != nil {
		s.log.Warning("Sweep", fmt.Sprintf("Stopped early: %v", stopErr))
	}
	return report, stopErr
}

// processToken never panics and always yields exactly one outcome.
func (s *Sweeper) processToken(ctx context.Context, tokenID int) (outcome model.Outcome) {
	uri := SourceURI(s.col.BaseURI, tokenID)

	defer func() {
		if r := recover(); r != nil {
			err := xerrors.Errorf("panic while processing token %d: %v", tokenID, r)
			s.log.Error("NFT", err.Error())
			outcome = model.Outcome{Kind: model.OutcomeFailed, TokenID: tokenID, SourceURI: uri, Err: err}
		}
	}()

	md, err := s.meta.FetchMetadata(ctx, tokenID)
	if err != nil {
		return model.Outcome{Kind: model.OutcomeFailed, TokenID: tokenID, SourceURI: uri, Err: err}
	}
	if md == nil {
		return model.Outcome{Kind: model.OutcomeNoMetadata, TokenID: tokenID, SourceURI: uri}
	}
	if md.Image == "" {
		s.log.Warning("NFT", fmt.Sprintf("No image URL found for token %d", tokenID))
		return model.Outcome{Kind: model.OutcomeNoAssetReference, TokenID: tokenID}
	}

	ref := asset.ParseReference(md.Image)
	fileName := LocalFileName(md.Name, tokenID)
	s.log.Info("NFT", fmt.Sprintf("Processing %s (ID: %d)", md.Name, tokenID))
	if c := ref.CIDString(); c != "" {
		s.log.Detail("NFT", fmt.Sprintf("Asset CID: %s", c))
	}

	res, err := s.assets.EnsureAsset(ctx, asset.Request{
		OutputDir: s.col.OutputDir,
		BaseURI:   s.col.BaseURI,
		AssetName: ref.Name,
		FileName:  fileName,
		Metadata:  md,
	})
	if err != nil {
		s.log.Error("NFT", fmt.Sprintf("Failed to process token %d: %v", tokenID, err))
		return model.Outcome{Kind: model.OutcomeFailed, TokenID: tokenID, SourceURI: uri, CID: ref.CIDString(), Err: err}
	}

	switch res.Status {
	case asset.Fetched:
		return model.Outcome{Kind: model.OutcomeDownloaded, TokenID: tokenID, SourceURI: uri, CID: ref.CIDString()}
	default:
		return model.Outcome{Kind: model.OutcomeSkipped, TokenID: tokenID, SourceURI: uri, CID: ref.CIDString()}
	}
}
