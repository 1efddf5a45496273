// Package console runs typed command lines against the device.
package console

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/idilsaglam/riego/internal/command"
	"github.com/idilsaglam/riego/internal/device"
	"github.com/idilsaglam/riego/internal/ui"
)

const Querying = "Querying…"

// Filler receives a file returned by the device (cat) so it can be edited
// and uploaded back.
type Filler interface {
	Fill(filename, content string) error
}

// Recorder keeps submitted lines.
type Recorder interface {
	Record(line string) error
}

// Console is the command console widget.
type Console struct {
	client  device.Doer
	Out     *ui.Pane
	Filler  Filler
	History Recorder
	busy    atomic.Bool
}

func New(client device.Doer) *Console {
	return &Console{client: client, Out: ui.NewPane("")}
}

// Busy reports whether the submit control is disabled.
func (c *Console) Busy() bool { return c.busy.Load() }

// Exec parses raw, sends the request and renders the reply into Out. The
// rendered text is returned too; err is set for usage and request failures.
func (c *Console) Exec(ctx context.Context, raw string) (string, error) {
	cmd, err := command.Parse(raw)
	if errors.Is(err, command.ErrEmpty) {
		return c.show(command.PromptEmpty), err
	}
	if c.History != nil {
		if err := c.History.Record(strings.TrimSpace(raw)); err != nil {
			log.Printf("console: history: %v", err)
		}
	}

	c.busy.Store(true)
	defer c.busy.Store(false)
	c.Out.SetText(Querying)

	req, err := cmd.Request()
	if errors.Is(err, command.ErrUsage) {
		return c.show(command.UsageZone), err
	}
	log.Printf("console: %s → %s %s", cmd.Verb(), req.Method, req.URL())

	res, err := c.client.Do(ctx, req)
	if err != nil {
		return c.show("Error: " + err.Error()), err
	}
	reply, err := res.Decode()
	if err != nil {
		return c.show("Error: " + err.Error()), err
	}
	text := c.show(device.Render(reply))

	if _, isZone := cmd.(command.Zone); !isZone {
		c.autofill(reply)
	}
	return text, nil
}

func (c *Console) autofill(reply device.Reply) {
	sc, ok := reply.(device.StructuredContent)
	if !ok || sc.File == "" || !sc.Textual || c.Filler == nil {
		return
	}
	if err := c.Filler.Fill(sc.File, sc.Content); err != nil {
		log.Printf("console: could not fill upload form: %v", err)
	}
}

func (c *Console) show(s string) string {
	c.Out.SetText(s)
	return s
}
