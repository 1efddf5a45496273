package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// Credentials authenticate requests to the device (or the proxy in front of it).
// Either User/Password (basic auth) or Token (bearer) is set.
type Credentials struct {
	User      string    `json:"user,omitempty"`
	Password  string    `json:"password,omitempty"`
	Token     string    `json:"token,omitempty"`
	Source    string    `json:"source"`     // "env" | "file"
	CreatedAt time.Time `json:"created_at"` // when we saved to file
}

// Apply sets the Authorization header on req. A nil receiver is a no-op.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.User != "":
		req.SetBasicAuth(c.User, c.Password)
	}
}

// Kind reports "token", "basic" or "" for display.
func (c *Credentials) Kind() string {
	switch {
	case c == nil:
		return ""
	case c.Token != "":
		return "token"
	case c.User != "":
		return "basic"
	}
	return ""
}

// Dir is ~/.riego, shared with the history store.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".riego"), nil
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// Get returns the active credentials, or nil when none are configured.
func Get() (*Credentials, error) {
	// 1) env override
	if tok := strings.TrimSpace(os.Getenv("RIEGO_TOKEN")); tok != "" {
		return &Credentials{Token: stripBearer(tok), Source: "env"}, nil
	}
	if user := strings.TrimSpace(os.Getenv("RIEGO_USER")); user != "" {
		return &Credentials{User: user, Password: os.Getenv("RIEGO_PASS"), Source: "env"}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	c.Token = stripBearer(c.Token)
	return &c, nil
}

// SaveBasic stores a user/password pair.
func SaveBasic(user, password string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return fmt.Errorf("empty user")
	}
	return save(Credentials{User: user, Password: password})
}

// SaveToken stores a bearer token.
func SaveToken(token string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	return save(Credentials{Token: token})
}

func save(c Credentials) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	// ensure ~/.riego exists with 0700
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	c.Source = "file"
	c.CreatedAt = time.Now()
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p, _ := credFilePath()
	// write with 0600 (owner-only)
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the credentials file; a missing file is not an error.
func Delete() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
