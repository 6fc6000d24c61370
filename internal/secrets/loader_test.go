package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	t.Setenv("SKILLFIT_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "api key", Value: "inline", Env: "SKILLFIT_TEST_KEY", File: path})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected %q, got %q", "from-file", got)
	}
}

func TestLoadPrefersEnvOverValue(t *testing.T) {
	t.Setenv("SKILLFIT_TEST_KEY", " from-env ")

	got, err := Load(Source{Name: "api key", Value: "inline", Env: "SKILLFIT_TEST_KEY"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected %q, got %q", "from-env", got)
	}
}

func TestLoadFallsBackToValue(t *testing.T) {
	t.Setenv("SKILLFIT_TEST_KEY", "")

	got, err := Load(Source{Value: " inline ", Env: "SKILLFIT_TEST_KEY"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "inline" {
		t.Fatalf("expected %q, got %q", "inline", got)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  "), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "nothing configured", src: Source{Name: "api key"}, expect: "api key is not configured"},
		{name: "default name", src: Source{}, expect: "secret is not configured"},
		{name: "empty file", src: Source{Name: "api key", File: empty}, expect: "is empty"},
		{name: "missing file", src: Source{Name: "api key", File: filepath.Join(t.TempDir(), "absent")}, expect: "reading api key from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(tt.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %q", tt.expect, err.Error())
			}
		})
	}
}
