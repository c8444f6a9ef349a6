package downloads

import "fmt"

// mediaInfo is the subset of yt-dlp's --dump-single-json output this program
// consumes. Fields absent or null in the payload simply stay zero.
type mediaInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Uploader    string        `json:"uploader"`
	UploadDate  string        `json:"upload_date"`
	Thumbnail   string        `json:"thumbnail"`
	WebpageURL  string        `json:"webpage_url"`
	Duration    float64       `json:"duration"`
	ViewCount   int64         `json:"view_count"`
	Formats     []mediaFormat `json:"formats"`
}

// mediaFormat mirrors one entry of the yt-dlp formats array.
type mediaFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	FormatNote     string  `json:"format_note"`
	Resolution     string  `json:"resolution"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	FPS            float64 `json:"fps"`
	ABR            float64 `json:"abr"`
}

// hasVideo reports whether the format carries a video stream.
func (f mediaFormat) hasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// audioOnly reports whether the format carries only an audio stream.
func (f mediaFormat) audioOnly() bool {
	return !f.hasVideo() && f.ACodec != "" && f.ACodec != "none"
}

// sizeHint returns the reported exact size, falling back to the approximate
// one.
func (f mediaFormat) sizeHint() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

func resolutionLabel(height int) string {
	return fmt.Sprintf("%dp", height)
}

func bitrateLabel(abr int) string {
	return fmt.Sprintf("%dkbps", abr)
}
