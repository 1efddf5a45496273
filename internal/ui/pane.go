package ui

import "sync"

// Pane is a text rendering target shared by a widget (which writes it from
// request goroutines) and the view that draws it.
type Pane struct {
	mu   sync.RWMutex
	text string
}

func NewPane(text string) *Pane { return &Pane{text: text} }

func (p *Pane) SetText(s string) {
	p.mu.Lock()
	p.text = s
	p.mu.Unlock()
}

func (p *Pane) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}
