package downloads

import (
	"context"
	"sort"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/araddon/dateparse"
)

const descriptionLimit = 200

// Info extracts metadata for url without downloading anything. No filesystem
// side effects.
func (d *Downloader) Info(ctx context.Context, url string) (*models.VideoInfo, error) {
	plat, ok := d.detector.Detect(url)
	if !ok {
		return nil, d.unsupportedErr("")
	}

	d.log.Info().Str("url", url).Str("platform", plat).Msg("info requested")

	info, err := d.run.extract(ctx, url)
	if err != nil {
		return nil, &models.Error{
			Kind:     models.KindExtraction,
			Message:  "Failed to extract video information. The URL might be invalid or the video might be private.",
			Platform: plat,
		}
	}

	return &models.VideoInfo{
		Status:          consts.StatusSuccess,
		Message:         "Video information extracted successfully.",
		Platform:        plat,
		Title:           info.Title,
		Description:     truncate(info.Description, descriptionLimit),
		Duration:        formatDuration(info.Duration),
		DurationSeconds: info.Duration,
		Uploader:        info.Uploader,
		ViewCount:       info.ViewCount,
		UploadDate:      normalizeUploadDate(info.UploadDate),
		Formats:         formatBuckets(info.Formats),
		EstimatedSize:   estimateSizes(info.Formats),
		Thumbnail:       info.Thumbnail,
		WebpageURL:      info.WebpageURL,
	}, nil
}

// normalizeUploadDate turns yt-dlp's compact date form (20250131) into an
// ISO date, passing through anything unparseable.
func normalizeUploadDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format(time.DateOnly)
}

// formatBuckets aggregates the raw format list into simplified labels:
// resolutions for video, bitrates for audio, highest first.
func formatBuckets(formats []mediaFormat) models.Formats {
	heights := map[int]struct{}{}
	bitrates := map[int]struct{}{}

	for _, f := range formats {
		switch {
		case f.hasVideo() && f.Height > 0:
			heights[f.Height] = struct{}{}
		case f.audioOnly() && f.ABR > 0:
			bitrates[int(f.ABR)] = struct{}{}
		}
	}

	out := models.Formats{
		Video: make([]string, 0, len(heights)),
		Audio: make([]string, 0, len(bitrates)),
	}
	for _, h := range sortedDesc(heights) {
		out.Video = append(out.Video, resolutionLabel(h))
	}
	for _, b := range sortedDesc(bitrates) {
		out.Audio = append(out.Audio, bitrateLabel(b))
	}
	return out
}

// estimateSizes picks the best video and audio formats carrying filesize
// hints and renders human-readable estimates per download type. HD video
// (>=720p) is preferred when present; a video-only pick has the best audio
// size added on top since the merge step will mux both.
func estimateSizes(formats []mediaFormat) models.EstimatedSize {
	var bestVideo, bestVideoHD, bestAudio mediaFormat

	for _, f := range formats {
		size := f.sizeHint()
		if size == 0 {
			continue
		}
		switch {
		case f.hasVideo():
			if size > bestVideo.sizeHint() {
				bestVideo = f
			}
			if f.Height >= 720 && size > bestVideoHD.sizeHint() {
				bestVideoHD = f
			}
		case f.audioOnly():
			if size > bestAudio.sizeHint() {
				bestAudio = f
			}
		}
	}

	if bestVideoHD.sizeHint() > 0 {
		bestVideo = bestVideoHD
	}

	var est models.EstimatedSize
	if size := bestVideo.sizeHint(); size > 0 {
		if bestVideo.ACodec == "none" {
			size += bestAudio.sizeHint()
		}
		est.Video = formatSize(size)
	}
	if size := bestAudio.sizeHint(); size > 0 {
		est.Audio = formatSize(size)
	}
	return est
}

func sortedDesc(set map[int]struct{}) []int {
	vals := make([]int, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	return vals
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
