package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"nft-sweeper/config"
	"nft-sweeper/report"
)

// upstream serves both the Moralis endpoints and the IPFS gateway.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/web3/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"2.2"}`))
	})
	mux.HandleFunc("/api/nft/0xabc/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/api/nft/0xabc/") {
		case "0":
			w.Write([]byte(`{"metadata":"{\"name\":\"Cool #1!\",\"image\":\"ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/0.mp4\"}"}`))
		case "1":
			w.Write([]byte(`{"metadata":"{\"name\":\"\",\"image\":\"ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/1.mp4\"}"}`))
		case "2":
			w.Write([]byte(`{"metadata":"{\"name\":\"no video\"}"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/ipfs/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server) config.SweeperConfig {
	t.Helper()
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho thumb > \"$last\"\n"
	if err := os.WriteFile(ffmpeg, []byte(script), 0755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}

	var cfg config.SweeperConfig
	cfg.Collection.ChainID = "0x1"
	cfg.Collection.ContractAddress = "0xabc"
	cfg.Collection.MoralisAPIKey = "key"
	cfg.Collection.BaseIPFSURI = srv.URL + "/ipfs/"
	cfg.Collection.TotalNFTs = 3
	cfg.Collection.DirPath = filepath.Join(dir, "assets")
	cfg.Sweep.MoralisURL = srv.URL + "/api"
	cfg.Sweep.FFmpegPath = ffmpeg
	cfg.Sweep.ReportPath = filepath.Join(dir, "results.json")
	cfg.Common.DBDSN = filepath.Join(dir, "ledger.db")
	return cfg
}

func TestRunSweepEndToEnd(t *testing.T) {
	srv := upstream(t)
	cfg := testConfig(t, srv)

	var out bytes.Buffer
	if err := RunSweep(context.Background(), cfg, &out); err != nil {
		t.Fatalf("RunSweep failed: %v", err)
	}

	r, err := report.Load(cfg.Sweep.ReportPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Stats.Downloaded != 2 || r.Stats.NoImage != 1 || r.Stats.NoMetadata != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if r.Successful[0].CID != "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG" {
		t.Errorf("cid = %q", r.Successful[0].CID)
	}
	for _, name := range []string{"cool__1_.mp4", "cool__1__thumb.jpg", "nft_1.mp4", "nft_1_thumb.jpg"} {
		if _, err := os.Stat(filepath.Join(cfg.Collection.DirPath, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "Successful Downloads: 2 NFTs") {
		t.Errorf("summary not printed:\n%s", out.String())
	}

	ledger, err := report.OpenLedger(cfg.Common.DBDSN)
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer ledger.Close()
	runs, err := ledger.Runs(0)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != r.RunID {
		t.Errorf("ledger runs = %+v", runs)
	}

	// second sweep skips everything already on disk
	if err := RunSweep(context.Background(), cfg, &out); err != nil {
		t.Fatalf("second RunSweep failed: %v", err)
	}
	r2, err := report.Load(cfg.Sweep.ReportPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r2.Stats.Skipped != 2 || r2.Stats.Downloaded != 0 {
		t.Errorf("second run stats = %+v", r2.Stats)
	}
}

func TestRunSweepRejectsBadConfig(t *testing.T) {
	srv := upstream(t)
	cfg := testConfig(t, srv)
	cfg.Collection.TotalNFTs = 0

	err := RunSweep(context.Background(), cfg, &bytes.Buffer{})
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("got %v, want exit code 1", err)
	}
	if _, err := os.Stat(cfg.Sweep.ReportPath); !os.IsNotExist(err) {
		t.Error("no report should be written for an invalid config")
	}
}

func TestRunSweepInitFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	cfg := testConfig(t, srv)

	err := RunSweep(context.Background(), cfg, &bytes.Buffer{})
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("got %v, want exit code 1", err)
	}
}

func TestRunSweepReportWriteFailureIsFatal(t *testing.T) {
	srv := upstream(t)
	cfg := testConfig(t, srv)
	cfg.Sweep.ReportPath = filepath.Join(t.TempDir(), "missing", "results.json")
	cfg.Common.DBDSN = ""

	err := RunSweep(context.Background(), cfg, &bytes.Buffer{})
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("got %v, want exit code 1", err)
	}
}
