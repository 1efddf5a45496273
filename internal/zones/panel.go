// Package zones drives the per-zone on/off switches.
package zones

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/idilsaglam/riego/internal/device"
	"github.com/idilsaglam/riego/internal/model"
	"github.com/idilsaglam/riego/internal/ui"
)

var (
	ErrUnknownZone = errors.New("unknown zone")
	ErrBusy        = errors.New("zone request in flight")
)

// Button is the displayed state of one zone switch.
type Button struct {
	Zone     string
	Name     string
	State    model.ZoneState
	Disabled bool
}

func (b Button) Label() string { return fmt.Sprintf("Zone %s: %s", b.Zone, b.State.Upper()) }

// Color is the background color for the current state.
func (b Button) Color() string { return ui.ZoneColor(b.State) }

// Result is the outcome of one zone request.
type Result struct {
	OK     bool
	Status int
	Body   string
	Err    error
}

// Text is the status line shown after a request.
func (r Result) Text() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return fmt.Sprintf("Response (%d): %s", r.Status, r.Body)
}

// Panel holds the zone buttons and their shared status line. Buttons of
// different zones can be in flight at the same time.
type Panel struct {
	client  device.Doer
	Status  *ui.Pane
	mu      sync.Mutex
	buttons []*Button
}

func New(client device.Doer, zones []model.Zone) *Panel {
	p := &Panel{client: client, Status: ui.NewPane("")}
	for _, z := range zones {
		p.buttons = append(p.buttons, &Button{
			Zone:  z.ID,
			Name:  z.Name,
			State: model.ParseZoneState(string(z.State)),
		})
	}
	return p
}

// Buttons returns a snapshot in configured order.
func (p *Panel) Buttons() []Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Button, 0, len(p.buttons))
	for _, b := range p.buttons {
		out = append(out, *b)
	}
	return out
}

// Button returns a snapshot of one zone.
func (p *Panel) Button(zone string) (Button, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b := p.find(zone); b != nil {
		return *b, true
	}
	return Button{}, false
}

func (p *Panel) find(zone string) *Button {
	for _, b := range p.buttons {
		if b.Zone == zone {
			return b
		}
	}
	return nil
}

// Click toggles zone and waits for the device. rawDuration is the zone's
// duration input, ignored unless it holds a positive integer.
func (p *Panel) Click(ctx context.Context, zone, rawDuration string) (Result, error) {
	pd, err := p.Begin(zone, rawDuration)
	if err != nil {
		return Result{}, err
	}
	return pd.Send(ctx), nil
}

// Pending is a click whose optimistic update is applied but whose request
// has not been sent yet.
type Pending struct {
	p       *Panel
	b       *Button
	current model.ZoneState
	req     device.Request
}

// Begin flips and disables the button and shows the outgoing request.
func (p *Panel) Begin(zone, rawDuration string) (*Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.find(zone)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	if b.Disabled {
		return nil, ErrBusy
	}
	pd := &Pending{p: p, b: b, current: b.State}
	b.State = b.State.Next()
	b.Disabled = true

	duration, _ := ParseDuration(rawDuration)
	pd.req = Request(zone, b.State, duration)
	p.Status.SetText(fmt.Sprintf("Sending %s ...", pd.req.URL()))
	return pd, nil
}

// Zone is the zone id this click targets.
func (pd *Pending) Zone() string { return pd.b.Zone }

// Send issues the request, re-enables the button and reverts it unless the
// device answered 2xx.
func (pd *Pending) Send(ctx context.Context) Result {
	res := send(ctx, pd.p.client, pd.req)
	pd.p.Status.SetText(res.Text())

	pd.p.mu.Lock()
	defer pd.p.mu.Unlock()
	pd.b.Disabled = false
	if !res.OK {
		log.Printf("zones: %s %s rejected, reverted to %s", pd.b.Zone, pd.b.State, pd.current)
		pd.b.State = pd.current
	}
	return res
}

// Request builds POST /api/esp/zone?zone=..&action=..[&duration=..]. A
// duration <= 0 is omitted.
func Request(zone string, action model.ZoneState, duration int) device.Request {
	q := "zone=" + url.QueryEscape(zone) + "&action=" + url.QueryEscape(string(action))
	if duration > 0 {
		q += "&duration=" + strconv.Itoa(duration)
	}
	return device.Request{Method: http.MethodPost, Path: device.PathZone, RawQuery: q}
}

// Send issues a zone request outside any panel.
func Send(ctx context.Context, client device.Doer, zone string, action model.ZoneState, duration int) Result {
	return send(ctx, client, Request(zone, action, duration))
}

func send(ctx context.Context, client device.Doer, req device.Request) Result {
	res, err := client.Do(ctx, req)
	if err != nil {
		return Result{Err: err}
	}
	return Result{OK: res.OK(), Status: res.Status, Body: res.Loose()}
}

// ParseDuration reads a leading integer the way a browser's parseInt does
// ("90s" is 90) and accepts only positive values.
func ParseDuration(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
