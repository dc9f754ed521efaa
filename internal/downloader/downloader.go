// Package downloader fetches audio and the raw upload title from a video
// URL by shelling out to yt-dlp.
package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundsift/internal/constants"
)

// Result is what one fetch produces: the extracted audio on local disk and
// the untrusted free-text label the source attached to it.
type Result struct {
	AudioPath       string
	RawTitle        string
	DurationSeconds int
}

type Downloader struct {
	WorkDir string
	Binary  string
}

func New(workDir string) *Downloader {
	return &Downloader{
		WorkDir: workDir,
		Binary:  "yt-dlp",
	}
}

// Fetch downloads the audio for url into the work directory and returns the
// local path together with the source's raw title.
func (d *Downloader) Fetch(ctx context.Context, url string) (*Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, constants.DownloadTimeout)
		defer cancel()
	}

	if err := os.MkdirAll(d.WorkDir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	meta, err := d.probe(ctx, url)
	if err != nil {
		return nil, err
	}

	format, ext := targetFormat(meta.ACodec)
	outPath := filepath.Join(d.WorkDir, uuid.New().String()+ext)
	cmd := exec.CommandContext(ctx, d.Binary,
		"--extract-audio",
		"--audio-format", format,
		"--format", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		"--output", outPath,
		url,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp download failed: %v (%s)", err, out)
	}

	if _, err := os.Stat(outPath); err != nil {
		return nil, fmt.Errorf("yt-dlp produced no output file: %w", err)
	}

	return &Result{
		AudioPath:       outPath,
		RawTitle:        meta.Title,
		DurationSeconds: int(meta.Duration + 0.5),
	}, nil
}

type videoMetadata struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	ACodec   string  `json:"acodec"`
}

// targetFormat decides the extraction format from the probed audio codec:
// lossless sources stay flac, everything else is extracted to mp3. Passing
// "flac" to yt-dlp copies a flac stream instead of re-encoding it.
func targetFormat(acodec string) (format, ext string) {
	if strings.EqualFold(acodec, "flac") {
		return "flac", constants.ExtFLAC
	}
	return "mp3", constants.ExtMP3
}

// probe runs a metadata-only pass so the raw title is known before the
// (much slower) audio extraction starts.
func (d *Downloader) probe(ctx context.Context, url string) (*videoMetadata, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, d.Binary,
		"-J",
		"--no-warnings",
		"--no-playlist",
		url,
	)
	out, err := cmd.Output()
	if err != nil {
		if probeCtx.Err() != nil {
			return nil, probeCtx.Err()
		}
		return nil, fmt.Errorf("yt-dlp metadata probe failed: %w", err)
	}

	var meta videoMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("source reported no title for %s", url)
	}
	return &meta, nil
}
