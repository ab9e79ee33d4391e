package itchio

import (
	"errors"
	"fmt"
)

// page level
var (
	ErrInvalidGamePage     = errors.New("invalid game page")
	ErrInvalidDownloadPage = errors.New("invalid download page")
)

// game page fields
var (
	ErrMissingTwitterUrl    = errors.New("missing twitter url")
	ErrInvalidTwitterUrl    = errors.New("invalid twitter url")
	ErrMissingCsrfToken     = errors.New("missing csrf token")
	ErrMissingIFrameData    = errors.New("missing iframe data")
	ErrMissingIFrameDataSrc = errors.New("missing iframe data src")
	ErrInvalidIFrameDataSrc = errors.New("invalid iframe data src")
)

// download row fields, ErrMissingTitle is also used for the game title.
var (
	ErrMissingTitle          = errors.New("missing title")
	ErrMissingFileSize       = errors.New("missing file size")
	ErrMissingId             = errors.New("missing id")
	ErrInvalidId             = errors.New("invalid id")
	ErrMissingPlatforms      = errors.New("missing platforms")
	ErrMissingPlatformString = errors.New("missing platform string")
	ErrInvalidPlatformString = errors.New("invalid platform string")
)

// resolution
var (
	ErrNoMatchingDownload = errors.New("no matching download")
)

// InvalidPlatformError is returned for an icon token that is not a known
// platform, it matches ErrInvalidPlatformString.
type InvalidPlatformError struct {
	Token string
}

func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform string `%s`", e.Token)
}

func (e *InvalidPlatformError) Is(target error) bool {
	return target == ErrInvalidPlatformString
}

// DownloadError is returned when a single download row fails to parse.
// Index is the row's position in the document.
type DownloadError struct {
	Index int
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("invalid download %d: %s", e.Index, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any response outside of 2xx.
type StatusError struct {
	Method     string
	Url        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.Url, e.Status)
}

// NoMatchingDownloadError carries the title that could not be found on the
// download page, it matches ErrNoMatchingDownload.
type NoMatchingDownloadError struct {
	Title string
}

func (e *NoMatchingDownloadError) Error() string {
	return fmt.Sprintf("no matching download for title `%s`", e.Title)
}

func (e *NoMatchingDownloadError) Is(target error) bool {
	return target == ErrNoMatchingDownload
}
