// Package consts holds various global, unchanging values.
package consts

// Media MIME types served to binary-file consumers.
const (
	MimeVideo = "video/mp4"
	MimeAudio = "audio/mpeg"
)

// Download statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Program defaults
const (
	DefaultOutputDir  = "downloads"
	DefaultServerPort = 8000
	DefaultDBFile     = "grabarr.db"
	ProgDirName       = ".grabarr"
)

// yt-dlp format selectors. The video selector steps down through mp4-capped
// resolutions before accepting whatever the platform offers.
const (
	VideoFormat = "best[height<=1080][ext=mp4]/best[height<=720][ext=mp4]/best[ext=mp4]/best[height<=1080]/best[height<=720]/worst[height>=360]/best"
	AudioFormat = "bestaudio/best"

	VideoFallbackFormat = "worst[height>=360]/worst"
	AudioFallbackFormat = "worst[acodec!=none]/bestaudio/worst"

	AudioCodec          = "mp3"
	AudioQuality        = "192K"
	AudioFallbackQuality = "128K"

	MergeContainer = "mp4"
)

// Database tables
const (
	DBDownloads = "downloads"
)

// Download table columns
const (
	QDLID       = "id"
	QDLURL      = "url"
	QDLPlatform = "platform"
	QDLType     = "download_type"
	QDLTitle    = "title"
	QDLPath     = "file_path"
	QDLSize     = "file_size_bytes"
	QDLDuration = "duration_seconds"
	QDLCreated  = "created_at"
)
