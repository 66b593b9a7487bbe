// Package report persists the sweep report and prints the console summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"nft-sweeper/logger"
	"nft-sweeper/model"
)

const DefaultPath = "results.json"

type Emitter struct {
	Path string
	Out  io.Writer
	Log  logger.Logger
}

func NewEmitter(path string, out io.Writer, log logger.Logger) *Emitter {
	if path == "" {
		path = DefaultPath
	}
	return &Emitter{Path: path, Out: out, Log: log}
}

// Save overwrites the report file and prints the summary. A write failure
// is returned to the caller; the summary is only printed after a
// successful write.
func (e *Emitter) Save(r *model.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return xerrors.Errorf("encode report: %w", err)
	}

	tempPath := e.Path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return xerrors.Errorf("write report %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, e.Path); err != nil {
		os.Remove(tempPath)
		return xerrors.Errorf("rename %s to %s: %w", tempPath, e.Path, err)
	}

	abs, err := filepath.Abs(e.Path)
	if err != nil {
		abs = e.Path
	}
	e.Log.Success("Report", fmt.Sprintf("Detailed results saved to %s", abs))

	if e.Out != nil {
		PrintSummary(e.Out, r)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("read report %s: %w", path, err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, xerrors.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

func PrintSummary(w io.Writer, r *model.Report) {
	s := r.Stats
	var b strings.Builder

	fmt.Fprintf(&b, "\nProcess finished with following results:\n")
	fmt.Fprintf(&b, "Total NFTs: %d\n", s.TotalNFTs)
	fmt.Fprintf(&b, "Processed: %d\n", s.Processed)
	fmt.Fprintf(&b, "Downloaded: %d\n", s.Downloaded)
	fmt.Fprintf(&b, "Skipped: %d\n", s.Skipped)
	fmt.Fprintf(&b, "Failed: %d\n", s.Failed)
	fmt.Fprintf(&b, "No Metadata: %d\n", s.NoMetadata)
	fmt.Fprintf(&b, "No Image URL: %d\n\n", s.NoImage)

	fmt.Fprintf(&b, "Successful Downloads: %d NFTs\n", len(r.Successful))
	for _, e := range r.Successful {
		fmt.Fprintf(&b, "  - Token %d\n", e.TokenID)
	}
	fmt.Fprintf(&b, "\nFailed Downloads: %d NFTs\n", len(r.Failed))
	for _, e := range r.Failed {
		fmt.Fprintf(&b, "  - Token %d: %s\n", e.TokenID, e.Error)
	}
	fmt.Fprintf(&b, "\nSkipped (Already Downloaded): %d NFTs\n", len(r.Skipped))
	for _, e := range r.Skipped {
		fmt.Fprintf(&b, "  - Token %d\n", e.TokenID)
	}

	noMeta := make([]string, 0, len(r.NoMetadata))
	for _, e := range r.NoMetadata {
		noMeta = append(noMeta, strconv.Itoa(e.TokenID))
	}
	noImage := make([]string, 0, len(r.NoImage))
	for _, id := range r.NoImage {
		noImage = append(noImage, strconv.Itoa(id))
	}
	fmt.Fprintf(&b, "\nTokens Without Metadata: %s\n", strings.Join(noMeta, ", "))
	fmt.Fprintf(&b, "Tokens Without Image URL: %s\n", strings.Join(noImage, ", "))

	io.WriteString(w, b.String())
}
