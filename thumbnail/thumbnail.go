// Package thumbnail extracts the first frame of a video with ffmpeg.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"nft-sweeper/logger"
)

const Suffix = "_thumb.jpg"

// ExecError is returned when ffmpeg cannot be started or exits non-zero.
type ExecError struct {
	VideoPath string
	Output    string
	Err       error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("thumbnail for %s: %v", filepath.Base(e.VideoPath), e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Path returns the thumbnail path for a video: the extension is replaced
// with the _thumb.jpg suffix.
func Path(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + Suffix
}

// Generator runs an ffmpeg binary. The zero value uses "ffmpeg" from PATH.
type Generator struct {
	Binary string
	Log    logger.Logger
}

func New(binary string, log logger.Logger) *Generator {
	return &Generator{Binary: binary, Log: log}
}

// Generate writes the thumbnail next to the video. A nil error means the
// thumbnail is in place: created is false when it already existed and was
// left untouched. On failure any partial output is removed so a later run
// regenerates it.
func (g *Generator) Generate(ctx context.Context, videoPath string) (created bool, err error) {
	log := g.Log
	if log == nil {
		log = logger.Discard()
	}
	thumbPath := Path(videoPath)
	videoName := filepath.Base(videoPath)

	if _, err := os.Stat(thumbPath); err == nil {
		log.Skip("Thumbnail", fmt.Sprintf("Already exists for %s", videoName))
		return false, nil
	}

	log.Info("Thumbnail", fmt.Sprintf("Starting generation for %s", videoName))
	log.Detail("Thumbnail", fmt.Sprintf("Source: %s", videoPath))
	log.Detail("Thumbnail", fmt.Sprintf("Target: %s", thumbPath))

	bin := g.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-i", videoPath,
		"-ss", "00:00:00",
		"-vframes", "1",
		"-q:v", "2",
		thumbPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		log.Detail("FFmpeg", stderr.String())
	}
	if stdout.Len() > 0 {
		log.Detail("FFmpeg", stdout.String())
	}
	if runErr != nil {
		execErr := &ExecError{VideoPath: videoPath, Output: stderr.String(), Err: runErr}
		if rmErr := os.Remove(thumbPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warning("Thumbnail", fmt.Sprintf("Could not remove partial %s: %v", filepath.Base(thumbPath), rmErr))
		}
		log.Error("Thumbnail", fmt.Sprintf("Failed for %s: %v", videoName, runErr))
		return false, execErr
	}

	log.Success("Thumbnail", fmt.Sprintf("Generated for %s", videoName))
	return true, nil
}
