// Package download acquires audio artifacts from remote video sources.
package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/rs/zerolog/log"
)

// Downloader is a pluggable audio acquisition backend.
type Downloader interface {
	// Download fetches the audio track for the given URL and returns the
	// local file path and the video title.
	Download(ctx context.Context, url string) (path string, title string, err error)
}

// YTDLPDownloader implements Downloader by shelling out to yt-dlp.
type YTDLPDownloader struct {
	binary string
	dir    string
}

// NewYTDLPDownloader creates a yt-dlp backed downloader.
func NewYTDLPDownloader(cfg *config.DownloadConfig) *YTDLPDownloader {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "./downloads"
	}
	return &YTDLPDownloader{binary: binary, dir: dir}
}

// Download resolves the video title first so the output filename can be
// sanitized up front, then extracts the best audio track as mp3.
func (d *YTDLPDownloader) Download(ctx context.Context, url string) (string, string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create download directory: %w", err)
	}

	title, err := d.videoTitle(ctx, url)
	if err != nil {
		return "", "", err
	}

	safeTitle := SanitizeFilename(title)
	if safeTitle == "" {
		safeTitle = "audio"
	}
	outTemplate := filepath.Join(d.dir, safeTitle+".%(ext)s")
	audioPath := filepath.Join(d.dir, safeTitle+".mp3")

	log.Info().Str("url", url).Str("file", audioPath).Msg("Downloading audio")

	cmd := exec.CommandContext(ctx, d.binary,
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", "192K",
		"-o", outTemplate,
		"--quiet", "--no-warnings",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", "", fmt.Errorf("%s failed: %w: %s", d.binary, err, strings.TrimSpace(stderr.String()))
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", "", fmt.Errorf("expected audio file missing after download: %w", err)
	}

	return audioPath, title, nil
}

func (d *YTDLPDownloader) videoTitle(ctx context.Context, url string) (string, error) {
	cmd := exec.CommandContext(ctx, d.binary, "--print", "%(title)s", "--skip-download", "--quiet", "--no-warnings", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to fetch video info: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	title := strings.TrimSpace(stdout.String())
	if title == "" {
		title = "audio"
	}
	return title, nil
}
