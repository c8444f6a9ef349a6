// Package downloads orchestrates media downloads and metadata extraction,
// delegating the actual retrieval to yt-dlp.
package downloads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"
	"grabarr/internal/platform"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds the explicit per-instance settings. There is no process-wide
// downloader state.
type Config struct {
	OutputDir string
}

// CookieProvider supplies a Netscape cookie file for a URL's domain, or an
// empty path when none is available.
type CookieProvider interface {
	File(ctx context.Context, rawURL string) (string, error)
}

// Recorder persists bookkeeping rows for completed downloads.
type Recorder interface {
	RecordDownload(rec *models.DownloadRecord) error
}

// Downloader turns URLs into downloaded files and normalized result records.
type Downloader struct {
	cfg      Config
	detector *platform.Detector
	run      runner
	cookies  CookieProvider
	recorder Recorder
	log      zerolog.Logger
}

// Option configures optional Downloader collaborators.
type Option func(*Downloader)

// WithCookies enables browser-cookie harvesting for gated content.
func WithCookies(cp CookieProvider) Option {
	return func(d *Downloader) { d.cookies = cp }
}

// WithRecorder enables download-history bookkeeping.
func WithRecorder(rec Recorder) Option {
	return func(d *Downloader) { d.recorder = rec }
}

// New builds a Downloader writing into cfg.OutputDir, creating the directory
// if absent.
func New(cfg Config, detector *platform.Detector, log zerolog.Logger, opts ...Option) (*Downloader, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = consts.DefaultOutputDir
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory %q: %w", cfg.OutputDir, err)
	}

	d := &Downloader{
		cfg:      cfg,
		detector: detector,
		run:      &ytdlpRunner{log: log},
		log:      log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// OutputDir returns the destination directory downloads are written into.
func (d *Downloader) OutputDir() string { return d.cfg.OutputDir }

// Platforms returns the supported platform identifiers.
func (d *Downloader) Platforms() []string { return d.detector.Platforms() }

// Download fetches the media at url as the given type and returns the
// normalized result. All failures come back as a typed *models.Error; the
// extraction library is never invoked for unsupported URLs.
func (d *Downloader) Download(ctx context.Context, url string, dlType models.DownloadType) (*models.DownloadResult, error) {
	plat, ok := d.detector.Detect(url)
	if !ok {
		return nil, d.unsupportedErr(string(dlType))
	}

	d.log.Info().Str("url", url).Str("platform", plat).Str("type", string(dlType)).Msg("download requested")

	info, err := d.run.extract(ctx, url)
	if err != nil {
		return nil, &models.Error{
			Kind:         models.KindExtraction,
			Message:      "Failed to extract video information. The URL might be invalid or the video might be private.",
			Platform:     plat,
			DownloadType: string(dlType),
		}
	}

	opts := d.fetchOptions(ctx, url, dlType)

	path, err := d.run.fetch(ctx, url, opts)
	if err != nil {
		// Platforms frequently reject the preferred selector; retry once
		// with a lowest-common-denominator format.
		d.log.Warn().Err(err).Str("url", url).Msg("initial download failed, retrying with fallback format")
		opts.format = consts.VideoFallbackFormat
		if dlType == models.TypeAudio {
			opts.format = consts.AudioFallbackFormat
			opts.audioQuality = consts.AudioFallbackQuality
		}
		if path, err = d.run.fetch(ctx, url, opts); err != nil {
			return nil, &models.Error{
				Kind:         models.KindDownload,
				Message:      fmt.Sprintf("Download failed: %v", err),
				Platform:     plat,
				DownloadType: string(dlType),
			}
		}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, &models.Error{
			Kind:         models.KindDownload,
			Message:      fmt.Sprintf("Downloaded file not found: %s", path),
			Platform:     plat,
			DownloadType: string(dlType),
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	d.record(url, plat, dlType, info, absPath, fi.Size())

	caser := "Video"
	if dlType == models.TypeAudio {
		caser = "Audio"
	}

	return &models.DownloadResult{
		Status:       consts.StatusSuccess,
		Message:      caser + " downloaded successfully.",
		FilePath:     absPath,
		Platform:     plat,
		DownloadType: string(dlType),
		FileSize:     formatSize(fi.Size()),
		Duration:     formatDuration(info.Duration),
	}, nil
}

// fetchOptions assembles the type-specific yt-dlp options. Output filenames
// carry a random token so concurrent requests for the same title never
// collide.
func (d *Downloader) fetchOptions(ctx context.Context, url string, dlType models.DownloadType) fetchOptions {
	token := strings.Split(uuid.NewString(), "-")[0]
	opts := fetchOptions{
		format:     consts.VideoFormat,
		outputTmpl: filepath.Join(d.cfg.OutputDir, fmt.Sprintf("%%(title)s [%s].%%(ext)s", token)),
	}
	if dlType == models.TypeAudio {
		opts.audio = true
		opts.format = consts.AudioFormat
		opts.audioQuality = consts.AudioQuality
	}

	if d.cookies != nil {
		cookieFile, err := d.cookies.File(ctx, url)
		if err != nil {
			d.log.Debug().Err(err).Str("url", url).Msg("no browser cookies available")
		} else {
			opts.cookieFile = cookieFile
		}
	}
	return opts
}

// record persists the bookkeeping row, logging rather than failing the
// request when the store is unavailable.
func (d *Downloader) record(url, plat string, dlType models.DownloadType, info *mediaInfo, absPath string, size int64) {
	if d.recorder == nil {
		return
	}
	rec := &models.DownloadRecord{
		URL:             url,
		Platform:        plat,
		DownloadType:    string(dlType),
		Title:           info.Title,
		FilePath:        absPath,
		FileSizeBytes:   size,
		DurationSeconds: info.Duration,
		CreatedAt:       time.Now(),
	}
	if err := d.recorder.RecordDownload(rec); err != nil {
		d.log.Error().Err(err).Str("url", url).Msg("failed to record download")
	}
}

func (d *Downloader) unsupportedErr(dlType string) *models.Error {
	return &models.Error{
		Kind:         models.KindUnsupportedPlatform,
		Message:      "Unsupported platform or invalid URL. Supported platforms: " + strings.Join(d.detector.Platforms(), ", "),
		DownloadType: dlType,
	}
}
