// Package raster drives a headless Chromium through Playwright to turn
// Vega and Vega-Lite specs into PNG or SVG bytes. The actual rendering is
// done by vega-embed loaded from a CDN inside a minimal HTML shell; this
// package only manages the browser session and the result handshake.
package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	_ "embed"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"
)

//go:embed shell.html
var shellHTML []byte

//go:embed render.js
var renderScript string

// pollScript reads back the result global written by renderScript.
const pollScript = `() => window.__vgraster`

const pollInterval = 100 * time.Millisecond

// DefaultTimeout bounds how long a render may stay pending in the browser.
const DefaultTimeout = time.Minute

// ShellHTML returns the static HTML document that loads the rendering
// library and provides the #vis mount point.
func ShellHTML() []byte {
	return shellHTML
}

// Options are the vega-embed options forwarded verbatim to the browser.
// Mode is left empty to let vega-embed infer it from the spec's $schema.
type Options struct {
	Renderer string `json:"renderer"`
	Mode     string `json:"mode,omitempty"`
}

type Session struct {
	PW             *playwright.Playwright
	Browser        playwright.Browser
	BrowserContext playwright.BrowserContext
	Page           playwright.Page
}

// Init acquires a headless Chromium session, installing the Playwright
// driver and browsers if they are missing or out of date.
func Init() (Session, error) {
	driver, err := playwright.NewDriver(&playwright.RunOptions{})
	if err != nil {
		return Session{}, &MissingDependencyError{Err: err}
	}
	if _, err := os.Stat(driver.DriverBinaryLocation); errors.Is(err, os.ErrNotExist) {
		err = playwright.Install()
		if err != nil {
			return Session{}, &MissingDependencyError{Err: err}
		}
	} else if err == nil {
		cmd := exec.Command(driver.DriverBinaryLocation, "--version")
		output, err := cmd.Output()
		if err != nil || !bytes.Contains(output, []byte(driver.Version)) {
			err = playwright.Install()
			if err != nil {
				return Session{}, &MissingDependencyError{Err: err}
			}
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return Session{}, &MissingDependencyError{Err: err}
	}
	browser, err := pw.Chromium.Launch()
	if err != nil {
		return Session{}, &BrowserLaunchError{Err: multierr.Append(err, pw.Stop())}
	}
	// From here on both the browser process and the driver are live, so
	// acquisition failures must release both before returning.
	context, err := browser.NewContext()
	if err != nil {
		err = multierr.Append(err, release(
			func() error { return browser.Close() },
			func() error { return pw.Stop() },
		))
		return Session{}, &BrowserLaunchError{Err: err}
	}
	page, err := context.NewPage()
	if err != nil {
		err = multierr.Append(err, release(
			func() error { return browser.Close() },
			func() error { return pw.Stop() },
		))
		return Session{}, &BrowserLaunchError{Err: err}
	}
	return Session{
		PW:             pw,
		Browser:        browser,
		BrowserContext: context,
		Page:           page,
	}, nil
}

// Restart replaces the browser process within the same driver, for
// long-lived callers recovering from a wedged page.
func (s *Session) Restart() (Session, error) {
	if err := s.Browser.Close(); err != nil {
		return Session{}, err
	}
	browser, err := s.PW.Chromium.Launch()
	if err != nil {
		return Session{}, &BrowserLaunchError{Err: err}
	}
	context, err := browser.NewContext()
	if err != nil {
		// The caller's old session still owns the driver; only the
		// fresh browser needs releasing here.
		return Session{}, &BrowserLaunchError{Err: multierr.Append(err, browser.Close())}
	}
	page, err := context.NewPage()
	if err != nil {
		return Session{}, &BrowserLaunchError{Err: multierr.Append(err, browser.Close())}
	}
	return Session{
		PW:             s.PW,
		Browser:        browser,
		BrowserContext: context,
		Page:           page,
	}, nil
}

func (s *Session) Cleanup() error {
	if s.PW == nil {
		return nil
	}
	return release(
		func() error { return s.Browser.Close() },
		func() error { return s.PW.Stop() },
	)
}

// release runs every teardown step even when an earlier one fails, so a
// browser close error can never leave the driver process behind.
func release(steps ...func() error) error {
	var err error
	for _, step := range steps {
		err = multierr.Append(err, step())
	}
	return err
}

// Evaluator is the slice of playwright.Page that Render needs. It exists
// so the polling protocol can be exercised without a browser.
type Evaluator interface {
	Evaluate(expression string, options ...interface{}) (interface{}, error)
}

// Navigator is the slice of playwright.Page needed to load the render
// shell.
type Navigator interface {
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
}

var (
	_ Evaluator = playwright.Page(nil)
	_ Navigator = playwright.Page(nil)
)

// Render injects one script that embeds the spec and converts the view,
// then polls the result global until the in-browser pipeline completes or
// timeout elapses. spec must be valid JSON; format must be "png" or "svg".
func Render(ctx context.Context, eval Evaluator, spec json.RawMessage, opt Options, format string, timeout time.Duration) ([]byte, error) {
	optJSON, err := json.Marshal(opt)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The embed call is asynchronous in-browser; this evaluation returns
	// as soon as the pipeline is kicked off.
	_, err = eval.Evaluate(renderScript, map[string]interface{}{
		"spec":   string(spec),
		"opt":    string(optJSON),
		"format": format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start render: %w", err)
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		res, err := eval.Evaluate(pollScript)
		if err != nil {
			return nil, fmt.Errorf("failed to poll render result: %w", err)
		}
		if state, ok := res.(map[string]interface{}); ok {
			if reason, ok := state["error"].(string); ok {
				return nil, &RenderFailedError{Reason: reason}
			}
			if done, _ := state["done"].(bool); done {
				image, _ := state["result"].(string)
				return decode(image, format)
			}
		}
		if time.Now().After(deadline) {
			return nil, &RenderTimeoutError{Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

const pngPrefix = "data:image/png;base64,"

func decode(image, format string) ([]byte, error) {
	if format == "svg" {
		if !strings.HasPrefix(strings.TrimSpace(image), "<svg") {
			return nil, &RenderFailedError{Reason: fmt.Sprintf("invalid SVG: %s", truncate(image))}
		}
		return []byte(image), nil
	}
	if !strings.HasPrefix(image, pngPrefix) {
		return nil, &RenderFailedError{Reason: fmt.Sprintf("invalid PNG data URI: %s", truncate(image))}
	}
	return base64.StdEncoding.DecodeString(image[len(pngPrefix):])
}

func truncate(s string) string {
	if len(s) > 50 {
		return s[:50] + "..."
	}
	return s
}
