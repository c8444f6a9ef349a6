package models

import (
	"errors"

	"grabarr/internal/domain/consts"
)

// ErrorKind classifies a failure for status-code and exit-code mapping.
type ErrorKind int

const (
	// KindUnsupportedPlatform covers URLs matching no known platform
	// pattern. Unparseable URLs land here too, the two are observably the
	// same condition.
	KindUnsupportedPlatform ErrorKind = iota

	// KindInvalidURL covers request bodies rejected before classification,
	// such as an empty URL field.
	KindInvalidURL

	// KindExtraction covers metadata retrieval failures: private,
	// age-restricted, region-locked or deleted content.
	KindExtraction

	// KindDownload covers failures after extraction succeeded, during file
	// retrieval or the container/codec conversion step.
	KindDownload

	// KindFilesystem covers an unwritable or uncreatable destination.
	KindFilesystem

	// KindInternal is the catch-all for faults not attributable to the
	// request or the upstream platform.
	KindInternal
)

// Error is the typed failure crossing an orchestrator boundary. Orchestrators
// never panic past themselves; every external-library fault is mapped into
// one of these.
type Error struct {
	Kind         ErrorKind
	Message      string
	Platform     string
	DownloadType string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a typed orchestrator error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// AsError unwraps err into a typed *Error, defaulting to KindInternal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// ErrorDownloadResult renders err as the status=error DownloadResult shape.
func ErrorDownloadResult(err error) *DownloadResult {
	e := AsError(err)
	return &DownloadResult{
		Status:       consts.StatusError,
		Message:      e.Message,
		Platform:     e.Platform,
		DownloadType: e.DownloadType,
	}
}

// ErrorVideoInfo renders err as the status=error VideoInfo shape.
func ErrorVideoInfo(err error) *VideoInfo {
	e := AsError(err)
	return &VideoInfo{
		Status:   consts.StatusError,
		Message:  e.Message,
		Platform: e.Platform,
	}
}
