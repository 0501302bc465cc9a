package shared

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateToken(t *testing.T) {
	t.Run("encodes requested entropy", func(t *testing.T) {
		token, err := GenerateToken(TokenBytes)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		raw, err := base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			t.Fatalf("token is not raw url base64: %v", err)
		}
		if len(raw) != TokenBytes {
			t.Errorf("expected %d bytes, got %d", TokenBytes, len(raw))
		}
	})

	t.Run("unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			state, err := GenerateState()
			if err != nil {
				t.Fatalf("GenerateState failed: %v", err)
			}
			if seen[state] {
				t.Fatalf("duplicate state %s", state)
			}
			seen[state] = true
		}
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tc := []struct {
		name string
		path string
		want string
	}{
		{name: "tilde prefix", path: "~/.likeswap/session", want: filepath.Join(home, ".likeswap/session")},
		{name: "bare tilde", path: "~", want: home},
		{name: "absolute", path: "/var/lib/likeswap", want: "/var/lib/likeswap"},
		{name: "relative", path: "./likeswap.db", want: "./likeswap.db"},
		{name: "tilde user form untouched", path: "~other/x", want: "~other/x"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandHome(tt.path)
			if err != nil {
				t.Fatalf("ExpandHome failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("child logger carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "fetcher")
		logger.Info("page fetched")

		out := buf.String()
		if !strings.Contains(out, "component=fetcher") {
			t.Errorf("expected component field in %q", out)
		}
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.InfoLevel)
		logger.Debug("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("file logger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("written")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("expected message in log file, got %q", string(data))
		}
	})
}
