package raster

import (
	"fmt"
	"time"
)

// MissingDependencyError means the Playwright driver or browsers are not
// installed and could not be installed.
type MissingDependencyError struct {
	Err error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("png/svg export requires the Playwright driver and a Chromium install: %v", e.Err)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// BrowserLaunchError means the headless browser process could not start.
type BrowserLaunchError struct {
	Err error
}

func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("failed to launch headless browser: %v", e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

// RenderTimeoutError means the in-browser pipeline never produced a
// result within the polling deadline.
type RenderTimeoutError struct {
	Timeout time.Duration
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render did not complete within %v", e.Timeout)
}

// RenderFailedError carries the rejection reason reported by the
// in-browser rendering pipeline.
type RenderFailedError struct {
	Reason string
}

func (e *RenderFailedError) Error() string {
	return fmt.Sprintf("render failed in browser: %s", e.Reason)
}
