package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/idilsaglam/riego/internal/model"
)

func TestPanelFramesEveryRow(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")
	defer SetColorForcing(false, false)

	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "c\nlonger"})
	want := strings.Join([]string{
		"+--------+",
		"| ab     |",
		"| c      |",
		"| longer |",
		"+--------+",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("Panel =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPaneConcurrentAccess(t *testing.T) {
	p := NewPane("start")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.SetText("x")
			_ = p.Text()
		}()
	}
	wg.Wait()
	if p.Text() != "x" {
		t.Errorf("Text = %q", p.Text())
	}
}

func TestZoneColor(t *testing.T) {
	if ZoneColor(model.ZoneOn) != "#16a34a" {
		t.Errorf("on color = %s", ZoneColor(model.ZoneOn))
	}
	if ZoneColor(model.ZoneOff) != "#dc2626" {
		t.Errorf("off color = %s", ZoneColor(model.ZoneOff))
	}
}

func TestStripANSI(t *testing.T) {
	if got := stripANSI("\033[32mok\033[0m"); got != "ok" {
		t.Errorf("stripANSI = %q", got)
	}
}
