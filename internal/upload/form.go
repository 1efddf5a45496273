// Package upload writes literal text content to a file on the device.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/idilsaglam/riego/internal/command"
	"github.com/idilsaglam/riego/internal/device"
	"github.com/idilsaglam/riego/internal/ui"
)

const (
	PromptFilename = "Enter a file name."
	Uploading      = "Uploading…"
)

var ErrNoFilename = errors.New("no file name")

// Form owns the filename/content inputs and the output pane.
type Form struct {
	client   device.Doer
	Filename *ui.Pane
	Content  *ui.Pane
	Out      *ui.Pane
	busy     atomic.Bool
}

func New(client device.Doer) *Form {
	return &Form{
		client:   client,
		Filename: ui.NewPane(""),
		Content:  ui.NewPane(""),
		Out:      ui.NewPane(""),
	}
}

// Busy reports whether the submit control is disabled.
func (f *Form) Busy() bool { return f.busy.Load() }

// Fill sets both inputs; the console uses it after a cat.
func (f *Form) Fill(filename, content string) error {
	if f == nil || f.Filename == nil || f.Content == nil {
		return errors.New("upload form not ready")
	}
	f.Filename.SetText(filename)
	f.Content.SetText(content)
	return nil
}

// Request builds the upload call for a (not yet sanitized) filename.
func Request(filename, content string) device.Request {
	return device.Request{
		Method:      http.MethodPost,
		Path:        device.PathCommand,
		RawQuery:    "cmd=upload&filename=" + url.QueryEscape(command.Sanitize(filename)),
		Body:        content,
		ContentType: "text/plain",
	}
}

// Submit uploads the current inputs and returns what it rendered to Out.
func (f *Form) Submit(ctx context.Context) (string, error) {
	filename := strings.TrimSpace(f.Filename.Text())
	if filename == "" {
		f.Out.SetText(PromptFilename)
		return PromptFilename, ErrNoFilename
	}

	f.busy.Store(true)
	defer f.busy.Store(false)
	f.Out.SetText(Uploading)

	res, err := f.client.Do(ctx, Request(filename, f.Content.Text()))
	if err != nil {
		return f.fail(err)
	}
	text, err := res.Pretty()
	if err != nil {
		return f.fail(err)
	}
	f.Out.SetText(text)
	if !res.OK() {
		return text, fmt.Errorf("upload: %d", res.Status)
	}
	return text, nil
}

func (f *Form) fail(err error) (string, error) {
	msg := "Error: " + err.Error()
	f.Out.SetText(msg)
	return msg, err
}
