// Package asset makes sure each token's video is present in the output
// directory, fetching it from the gateway when it is not.
package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"

	"nft-sweeper/logger"
	"nft-sweeper/model"
)

type Status int

const (
	AlreadyPresent Status = iota
	Fetched
)

func (s Status) String() string {
	switch s {
	case AlreadyPresent:
		return "already-present"
	case Fetched:
		return "fetched"
	}
	return "unknown"
}

// Request names one asset to ensure on disk.
type Request struct {
	OutputDir string
	BaseURI   string
	AssetName string
	FileName  string
	Metadata  *model.TokenMetadata
}

// URL is the literal concatenation of base URI and asset name.
func (r Request) URL() string {
	return r.BaseURI + r.AssetName
}

type Result struct {
	Status Status
	Path   string
	// ThumbnailErr is set when the thumbnail could not be produced. It does
	// not change Status.
	ThumbnailErr error
}

// DownloadError carries the local filename and the underlying cause of a
// directory, network, or write failure.
type DownloadError struct {
	FileName string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.FileName, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// StatusError is a non-2xx gateway response.
type StatusError struct {
	Code       int
	StatusText string
}

func (e *StatusError) Error() string {
	return "Failed to fetch video: " + e.StatusText
}

type Thumbnailer interface {
	Generate(ctx context.Context, videoPath string) (bool, error)
}

type Downloader struct {
	http   *http.Client
	thumbs Thumbnailer
	log    logger.Logger
}

func NewDownloader(timeout time.Duration, thumbs Thumbnailer, log logger.Logger) *Downloader {
	return &Downloader{
		http:   &http.Client{Timeout: timeout},
		thumbs: thumbs,
		log:    log,
	}
}

// EnsureAsset returns AlreadyPresent without touching the network when the
// destination file exists, and Fetched after streaming it from the gateway
// otherwise. Both paths then make sure the thumbnail exists.
func (d *Downloader) EnsureAsset(ctx context.Context, req Request) (Result, error) {
	if _, err := os.Stat(req.OutputDir); os.IsNotExist(err) {
		d.log.Info("Setup", fmt.Sprintf("Creating videos directory: %s", req.OutputDir))
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return Result{}, d.fail(req.FileName, xerrors.Errorf("create directory %s: %w", req.OutputDir, err))
	}

	path := filepath.Join(req.OutputDir, req.FileName)

	if _, err := os.Stat(path); err == nil {
		d.log.Skip("Download", fmt.Sprintf("File exists: %s", req.FileName))
		d.logMetadata(req.Metadata)
		res := Result{Status: AlreadyPresent, Path: path}
		res.ThumbnailErr = d.thumbnail(ctx, path)
		return res, nil
	} else if !os.IsNotExist(err) {
		return Result{}, d.fail(req.FileName, xerrors.Errorf("stat %s: %w", path, err))
	}

	d.log.Info("Download", fmt.Sprintf("Starting for: %s", req.FileName))
	url := req.URL()
	d.log.Detail("Download", fmt.Sprintf("URL: %s", url))

	if err := d.fetch(ctx, url, path, req.FileName); err != nil {
		return Result{}, d.fail(req.FileName, err)
	}

	d.log.Success("Download", fmt.Sprintf("Saved: %s", req.FileName))
	d.logMetadata(req.Metadata)

	res := Result{Status: Fetched, Path: path}
	res.ThumbnailErr = d.thumbnail(ctx, path)
	return res, nil
}

// fetch streams the body into path+".part" and renames it into place once
// the copy completes.
func (d *Downloader) fetch(ctx context.Context, url, path, fileName string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return xerrors.Errorf("build request for %s: %w", url, err)
	}
	resp, err := d.http.Do(httpReq)
	if err != nil {
		return xerrors.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	d.log.Detail("Download", fmt.Sprintf("Response: %s", resp.Status))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := http.StatusText(resp.StatusCode)
		if text == "" {
			text = resp.Status
		}
		return &StatusError{Code: resp.StatusCode, StatusText: text}
	}

	d.log.Info("Write", fmt.Sprintf("Starting file write: %s", fileName))
	tempPath := path + ".part"
	f, err := os.Create(tempPath)
	if err != nil {
		return xerrors.Errorf("create %s: %w", tempPath, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tempPath)
		return xerrors.Errorf("write %s: %w", tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return xerrors.Errorf("close %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return xerrors.Errorf("rename %s to %s: %w", tempPath, path, err)
	}
	return nil
}

func (d *Downloader) thumbnail(ctx context.Context, path string) error {
	if d.thumbs == nil {
		return nil
	}
	if _, err := d.thumbs.Generate(ctx, path); err != nil {
		d.log.Warning("Thumbnail", fmt.Sprintf("Continuing without thumbnail for %s: %v", filepath.Base(path), err))
		return err
	}
	return nil
}

func (d *Downloader) logMetadata(md *model.TokenMetadata) {
	if md == nil {
		return
	}
	d.log.Detail("Metadata", fmt.Sprintf("Name: %s", md.Name))
	d.log.Detail("Metadata", fmt.Sprintf("Description: %s", md.Description))
	if md.HasAttributes() {
		d.log.Detail("Attributes", string(md.Attributes))
	}
}

func (d *Downloader) fail(fileName string, err error) error {
	d.log.Error("Download", fmt.Sprintf("Failed for %s: %v", fileName, err))
	return &DownloadError{FileName: fileName, Err: err}
}
