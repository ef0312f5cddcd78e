package epubmd

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the epubmd package.
var (
	// ErrNotFound indicates the input path (archive or folder) does not exist.
	ErrNotFound = errors.New("epubmd: not found")

	// ErrInvalidArchive indicates the input is not a well-formed zip container.
	ErrInvalidArchive = errors.New("epubmd: invalid ePub archive")

	// ErrDecode indicates a document part is not valid UTF-8.
	ErrDecode = errors.New("epubmd: document part is not valid UTF-8")

	// ErrDRMProtected indicates the archive content is encrypted
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be converted.
	ErrDRMProtected = errors.New("epubmd: file is DRM protected")
)

// PartError records a failure confined to a single document part.
// The part is skipped; the rest of the archive is still converted.
type PartError struct {
	// Name is the zip-internal path of the failing part.
	Name string

	// Err is the underlying cause, typically wrapping ErrDecode.
	Err error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("epubmd: part %s: %v", e.Name, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}
