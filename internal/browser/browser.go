package browser

import (
	"errors"
	"fmt"
	"io"

	pkgbrowser "github.com/pkg/browser"
)

// ErrDisabled is returned by Disabled
var ErrDisabled = errors.New("browser launch disabled")

// Launcher opens a URL in a web browser
type Launcher interface {
	Open(url string) error
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(url string) error

// Open calls f(url)
func (f LauncherFunc) Open(url string) error {
	return f(url)
}

// System opens URLs in the platform's default browser
type System struct{}

// Open launches the default browser. Output of the helper process
// (xdg-open, open, rundll32) is discarded.
func (System) Open(url string) error {
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	if err := pkgbrowser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// Disabled never opens anything
var Disabled = LauncherFunc(func(string) error { return ErrDisabled })

// Result reports the outcome of a launch attempt
type Result struct {
	URL    string
	Opened bool
	Err    error
}

// Launch tries to open url with l. It never fails: any error or panic
// from the launcher is reported in the Result.
func Launch(l Launcher, url string) (res Result) {
	res.URL = url
	if l == nil {
		res.Err = ErrDisabled
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res.Opened = false
			res.Err = fmt.Errorf("browser launcher panicked: %v", r)
		}
	}()

	if err := l.Open(url); err != nil {
		res.Err = err
		return res
	}

	res.Opened = true
	return res
}
