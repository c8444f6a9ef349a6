// Package models holds the normalized record shapes shared by every
// presentation surface.
package models

import (
	"fmt"
	"strings"
	"time"

	"grabarr/internal/domain/consts"
)

// DownloadType selects the requested output: a video container or an
// audio-only extraction.
type DownloadType string

const (
	TypeVideo DownloadType = "video"
	TypeAudio DownloadType = "audio"
)

// ParseDownloadType validates a raw download type string.
func ParseDownloadType(s string) (DownloadType, error) {
	switch DownloadType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeVideo:
		return TypeVideo, nil
	case TypeAudio:
		return TypeAudio, nil
	default:
		return "", fmt.Errorf("invalid download type %q, must be 'video' or 'audio'", s)
	}
}

// MimeType returns the MIME type handed to binary-file consumers.
func (t DownloadType) MimeType() string {
	if t == TypeAudio {
		return consts.MimeAudio
	}
	return consts.MimeVideo
}

// DownloadRequest is the body of POST /download and POST /download/telegram.
type DownloadRequest struct {
	URL          string `json:"url"`
	DownloadType string `json:"download_type"`
}

// InfoRequest is the body of POST /info.
type InfoRequest struct {
	URL string `json:"url"`
}

// DownloadResult is the normalized outcome of a download request. Built once
// per request and immutable afterwards.
type DownloadResult struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	FilePath     string `json:"file_path,omitempty"`
	Platform     string `json:"platform,omitempty"`
	DownloadType string `json:"download_type,omitempty"`
	FileSize     string `json:"file_size,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Formats aggregates the available formats into simplified buckets:
// resolution labels for video, bitrate labels for audio.
type Formats struct {
	Video []string `json:"video_formats"`
	Audio []string `json:"audio_formats"`
}

// EstimatedSize carries human-readable size estimates per download type.
type EstimatedSize struct {
	Video string `json:"video,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// VideoInfo is the normalized outcome of a metadata-only request.
type VideoInfo struct {
	Status          string        `json:"status"`
	Message         string        `json:"message"`
	Platform        string        `json:"platform,omitempty"`
	Title           string        `json:"title,omitempty"`
	Description     string        `json:"description,omitempty"`
	Duration        string        `json:"duration,omitempty"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	Uploader        string        `json:"uploader,omitempty"`
	ViewCount       int64         `json:"view_count,omitempty"`
	UploadDate      string        `json:"upload_date,omitempty"`
	Formats         Formats       `json:"formats"`
	EstimatedSize   EstimatedSize `json:"estimated_size"`
	Thumbnail       string        `json:"thumbnail,omitempty"`
	WebpageURL      string        `json:"webpage_url,omitempty"`
}

// DownloadRecord is the bookkeeping row persisted for each successful
// download.
//
// Matches the order of the DB table, do not alter.
type DownloadRecord struct {
	ID              int64     `json:"id" db:"id"`
	URL             string    `json:"url" db:"url"`
	Platform        string    `json:"platform" db:"platform"`
	DownloadType    string    `json:"download_type" db:"download_type"`
	Title           string    `json:"title" db:"title"`
	FilePath        string    `json:"file_path" db:"file_path"`
	FileSizeBytes   int64     `json:"file_size_bytes" db:"file_size_bytes"`
	DurationSeconds float64   `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
