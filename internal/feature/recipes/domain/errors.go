// Package domain defines domain-level errors for the recipes feature.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRemoteService matches every *RemoteServiceError via errors.Is.
	ErrRemoteService = errors.New("remote service error")

	// ErrImageDecode matches every *ImageDecodeError via errors.Is.
	ErrImageDecode = errors.New("image decode error")
)

// RemoteServiceError is returned by recipe provider adapters for non-2xx
// responses and transport failures.
type RemoteServiceError struct {
	Op         string // provider operation, e.g. "CategoryList"
	StatusCode int    // 0 for transport failures
	Err        error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRemoteService) match any RemoteServiceError.
func (e *RemoteServiceError) Is(target error) bool { return target == ErrRemoteService }

// Retryable reports whether repeating the request may succeed.
// Transport failures, 429 and 5xx are retryable; other statuses are application errors.
func (e *RemoteServiceError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ImageDecodeError is returned when a thumbnail cannot be fetched or decoded.
type ImageDecodeError struct {
	URL string
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("image %q: %v", e.URL, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrImageDecode) match any ImageDecodeError.
func (e *ImageDecodeError) Is(target error) bool { return target == ErrImageDecode }
