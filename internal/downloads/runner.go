package downloads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"grabarr/internal/domain/consts"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// runner is the seam between the orchestrators and the extraction library.
type runner interface {
	// extract retrieves metadata without downloading.
	extract(ctx context.Context, url string) (*mediaInfo, error)

	// fetch downloads the media and returns the final file path.
	fetch(ctx context.Context, url string, opts fetchOptions) (string, error)
}

// fetchOptions carries the type-specific yt-dlp settings for one download.
type fetchOptions struct {
	format       string
	audio        bool
	audioQuality string
	outputTmpl   string
	cookieFile   string
}

// ytdlpRunner invokes the yt-dlp binary through go-ytdlp.
type ytdlpRunner struct {
	log zerolog.Logger
}

func (r *ytdlpRunner) extract(ctx context.Context, url string) (*mediaInfo, error) {
	cmd := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoPlaylist().
		NoWarnings().
		Quiet()

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata extraction failed: %w", err)
	}

	var info mediaInfo
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	return &info, nil
}

func (r *ytdlpRunner) fetch(ctx context.Context, url string, opts fetchOptions) (string, error) {
	cmd := ytdlp.New().
		RestrictFilenames().
		NoPlaylist().
		NoWarnings().
		Format(opts.format).
		Output(opts.outputTmpl).
		Print("after_move:filepath")

	if opts.audio {
		cmd = cmd.ExtractAudio().
			AudioFormat(consts.AudioCodec).
			AudioQuality(opts.audioQuality)
	} else {
		cmd = cmd.MergeOutputFormat(consts.MergeContainer)
	}

	if opts.cookieFile != "" {
		cmd = cmd.Cookies(opts.cookieFile)
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}

	path := finalPath(res.Stdout)
	if path == "" {
		return "", fmt.Errorf("yt-dlp reported no output file for %s", url)
	}

	r.log.Debug().Str("url", url).Str("path", path).Msg("yt-dlp finished")
	return path, nil
}

// finalPath returns the last non-empty stdout line, which carries the
// post-processed file path printed by after_move:filepath.
func finalPath(stdout string) string {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
