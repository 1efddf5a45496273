// Package logview polls the device log tail while toggled on.
package logview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/riego/internal/device"
	"github.com/idilsaglam/riego/internal/ui"
)

// Defaults used when the config leaves them unset.
const (
	DefaultLines    = 20
	DefaultInterval = 30 * time.Second
)

// Viewer is the log viewer widget: stopped until toggled, then fetches the
// tail immediately and on every interval.
type Viewer struct {
	client   device.Doer
	Box      *ui.Pane
	lines    int
	interval time.Duration

	// OnUpdate runs after Box changes (from the poll goroutine).
	OnUpdate func()

	mu   sync.Mutex
	stop chan struct{}
}

func New(client device.Doer, lines int, interval time.Duration) *Viewer {
	if lines <= 0 {
		lines = DefaultLines
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Viewer{client: client, Box: ui.NewPane(""), lines: lines, interval: interval}
}

func (v *Viewer) Interval() time.Duration { return v.interval }

// Running reports whether polling is on.
func (v *Viewer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}

// Label is the toggle caption: the action the toggle would take next.
func (v *Viewer) Label() string {
	if v.Running() {
		return "OFF"
	}
	return "ON"
}

// Toggle flips between running and stopped and returns the new state.
func (v *Viewer) Toggle(ctx context.Context) bool {
	if v.Running() {
		v.Stop()
		return false
	}
	v.Start(ctx)
	return true
}

// Start begins polling; a second Start is a no-op.
func (v *Viewer) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		return
	}
	v.stop = make(chan struct{})
	go v.loop(ctx, v.stop)
}

// Stop cancels the ticker. A fetch already in flight is not aborted and
// still updates Box when it lands.
func (v *Viewer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop == nil {
		return
	}
	close(v.stop)
	v.stop = nil
}

func (v *Viewer) loop(ctx context.Context, stop <-chan struct{}) {
	v.Refresh(ctx)

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			v.Refresh(ctx)
		}
	}
}

// Refresh fetches the tail once. Errors are logged and leave Box as is.
func (v *Viewer) Refresh(ctx context.Context) {
	lines, err := v.Fetch(ctx)
	if err != nil {
		log.Printf("logview: %v", err)
		return
	}
	v.Box.SetText(strings.Join(lines, "\n"))
	if v.OnUpdate != nil {
		v.OnUpdate()
	}
}

type tailReply struct {
	Lines []string `json:"lines"`
	Error string   `json:"error,omitempty"`
}

// Fetch returns the last lines of the device log.
func (v *Viewer) Fetch(ctx context.Context) ([]string, error) {
	res, err := v.client.Do(ctx, device.Request{
		Method:   http.MethodGet,
		Path:     device.PathTail,
		RawQuery: "n=" + strconv.Itoa(v.lines),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tail: %w", err)
	}
	var tr tailReply
	if err := json.Unmarshal(res.Body, &tr); err != nil {
		return nil, fmt.Errorf("decode tail: %w", err)
	}
	if tr.Lines == nil {
		if tr.Error != "" {
			return nil, fmt.Errorf("tail: %s", tr.Error)
		}
		return nil, errors.New("tail: reply has no lines")
	}
	return tr.Lines, nil
}
