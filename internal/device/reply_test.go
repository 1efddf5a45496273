package device

import "testing"

func jsonResponse(body string) *Response {
	return &Response{Status: 200, ContentType: "application/json; charset=utf-8", Body: []byte(body)}
}

func TestDecodeAndRender(t *testing.T) {
	tests := []struct {
		name string
		res  *Response
		want string
	}{
		{"content", jsonResponse(`{"content":"hello"}`), "hello"},
		{"other", jsonResponse(`{"foo":1}`), "{\n  \"foo\": 1\n}"},
		{"key order kept", jsonResponse(`{"z":1,"a":2}`), "{\n  \"z\": 1,\n  \"a\": 2\n}"},
		{"empty content", jsonResponse(`{"content":""}`), "{\n  \"content\": \"\"\n}"},
		{"null content", jsonResponse(`{"content":null,"x":1}`), "{\n  \"content\": null,\n  \"x\": 1\n}"},
		{"numeric content", jsonResponse(`{"content":42}`), "42"},
		{"array", jsonResponse(`[1,2]`), "[\n  1,\n  2\n]"},
		{"plain", &Response{Status: 200, ContentType: "text/plain", Body: []byte("raw text")}, "raw text"},
		{"no content type", &Response{Status: 200, Body: []byte(`{"content":"x"}`)}, `{"content":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, err := tt.res.Decode()
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := Render(rp); got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeFileField(t *testing.T) {
	rp, err := jsonResponse(`{"file":"notes.txt","content":"abc"}`).Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sc, ok := rp.(StructuredContent)
	if !ok {
		t.Fatalf("got %T, want StructuredContent", rp)
	}
	if sc.File != "notes.txt" || sc.Content != "abc" || !sc.Textual {
		t.Errorf("got %+v", sc)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	if _, err := jsonResponse(`{"content":`).Decode(); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := jsonResponse(`nope`).Pretty(); err == nil {
		t.Fatal("expected Pretty error")
	}
}

func TestPretty(t *testing.T) {
	got, err := jsonResponse(`{"status":"Archivo guardado","file":"a.txt"}`).Pretty()
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "{\n  \"status\": \"Archivo guardado\",\n  \"file\": \"a.txt\"\n}"
	if got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
	got, _ = (&Response{ContentType: "text/plain", Body: []byte("saved")}).Pretty()
	if got != "saved" {
		t.Errorf("Pretty(text) = %q", got)
	}
}

func TestLoose(t *testing.T) {
	tests := map[string]string{
		`{"status":"ok"}`: "{\n  \"status\": \"ok\"\n}",
		`"done"`:          "done",
		"not json":        "not json",
		"":                "",
	}
	for body, want := range tests {
		res := &Response{ContentType: "text/plain", Body: []byte(body)}
		if got := res.Loose(); got != want {
			t.Errorf("Loose(%q) = %q, want %q", body, got, want)
		}
	}
}
