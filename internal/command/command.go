// Package command turns a console line into a device request.
package command

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/idilsaglam/riego/internal/device"
)

// Messages shown instead of sending a request.
const (
	PromptEmpty = "Enter a command"
	UsageZone   = "Enter zone and action, e.g. 'zone1 on 3600'"
)

var (
	ErrEmpty = errors.New("empty command")
	ErrUsage = errors.New("usage")
)

var zoneVerb = regexp.MustCompile(`(?i)^zon[ae]\d+$`)

// fileVerbs take an optional filename argument.
var fileVerbs = map[string]bool{"cat": true, "rm": true, "ls": true, "tail": true}

// Command is one parsed console line. Request validates the arguments and
// builds the call; it returns an error wrapping ErrUsage when nothing should
// be sent.
type Command interface {
	Verb() string
	Request() (device.Request, error)
}

// Parse tokenizes raw on whitespace and picks the variant from the verb.
func Parse(raw string) (Command, error) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return nil, ErrEmpty
	}
	verb := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = Sanitize(parts[1])
	}

	switch {
	case verb == "zone":
		return Zone{verb: verb, Body: strings.Join(parts[1:], " ")}, nil
	case zoneVerb.MatchString(verb):
		return Zone{verb: verb, Body: strings.Join(parts, " ")}, nil
	case fileVerbs[verb]:
		return File{verb: verb, Filename: arg}, nil
	}
	return Generic{verb: verb, Arg: arg}, nil
}

// Sanitize replaces path separators with "-_-"; the device turns them back.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, "/", "-_-")
}

// Zone posts "<zone> <action> [<duration>]" as plain text.
type Zone struct {
	verb string
	Body string
}

func (z Zone) Verb() string { return z.verb }

func (z Zone) Request() (device.Request, error) {
	if strings.TrimSpace(z.Body) == "" {
		return device.Request{}, ErrUsage
	}
	return device.Request{
		Method:      http.MethodPost,
		Path:        device.PathZone,
		Body:        z.Body,
		ContentType: "text/plain",
	}, nil
}

// File is cat, rm, ls or tail, with an optional filename.
type File struct {
	verb     string
	Filename string
}

func (f File) Verb() string { return f.verb }

func (f File) Request() (device.Request, error) {
	q := "cmd=" + url.QueryEscape(f.verb)
	if f.Filename != "" {
		q += "&filename=" + url.QueryEscape(f.Filename)
	}
	return device.Request{Method: http.MethodGet, Path: device.PathCommand, RawQuery: q}, nil
}

// Generic is any other verb; its argument is not forwarded.
type Generic struct {
	verb string
	Arg  string
}

func (g Generic) Verb() string { return g.verb }

func (g Generic) Request() (device.Request, error) {
	return device.Request{
		Method:   http.MethodGet,
		Path:     device.PathCommand,
		RawQuery: "cmd=" + url.QueryEscape(g.verb),
	}, nil
}
