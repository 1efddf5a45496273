package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Response is a fully read device reply.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// IsJSON sniffs the declared Content-Type.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "application/json")
}

// Reply is the decoded shape of a response: StructuredContent,
// StructuredOther or Plain.
type Reply interface{ reply() }

// StructuredContent is a JSON object carrying a truthy "content" field.
// Textual is set when content was a JSON string; File holds a string "file"
// field when present.
type StructuredContent struct {
	Content string
	File    string
	Textual bool
}

// StructuredOther is any other JSON document.
type StructuredOther struct {
	Raw json.RawMessage
}

// Plain is a non-JSON body.
type Plain struct {
	Text string
}

func (StructuredContent) reply() {}
func (StructuredOther) reply()   {}
func (Plain) reply()             {}

// Decode classifies the body by content type. A JSON content type with a
// malformed body is an error.
func (r *Response) Decode() (Reply, error) {
	if !r.IsJSON() {
		return Plain{Text: string(r.Body)}, nil
	}
	raw := bytes.TrimSpace(r.Body)
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, isObject := probe.(map[string]any); !isObject {
		return StructuredOther{Raw: raw}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	content, ok := fields["content"]
	if !ok || !truthy(content) {
		return StructuredOther{Raw: raw}, nil
	}
	sc := StructuredContent{}
	var s string
	if json.Unmarshal(content, &s) == nil {
		sc.Content, sc.Textual = s, true
	} else {
		sc.Content = compact(content)
	}
	var file string
	if f, ok := fields["file"]; ok && json.Unmarshal(f, &file) == nil {
		sc.File = file
	}
	return sc, nil
}

// Pretty renders a JSON body with two-space indentation, or the raw text
// for non-JSON bodies.
func (r *Response) Pretty() (string, error) {
	if !r.IsJSON() {
		return string(r.Body), nil
	}
	raw := bytes.TrimSpace(r.Body)
	if !json.Valid(raw) {
		var probe any
		return "", fmt.Errorf("decode json: %w", json.Unmarshal(raw, &probe))
	}
	return Indent(raw), nil
}

// Loose parses the body as JSON regardless of content type and falls back
// to the raw text. A JSON string renders unquoted.
func (r *Response) Loose() string {
	raw := bytes.TrimSpace(r.Body)
	if len(raw) == 0 || !json.Valid(raw) {
		return string(r.Body)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return Indent(raw)
}

// Render is the single rendering function over Reply.
func Render(rp Reply) string {
	switch v := rp.(type) {
	case StructuredContent:
		return v.Content
	case StructuredOther:
		return Indent(v.Raw)
	case Plain:
		return v.Text
	}
	return ""
}

// Indent pretty-prints valid JSON keeping key order. Invalid input is
// returned unchanged.
func Indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truthy follows the falsy set of the original page: null, false, 0 and "".
func truthy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}
