package shared

import (
	"errors"
	"slices"
	"testing"
)

func stubLauncher(t *testing.T, os string, err error) *[]string {
	t.Helper()

	var got []string
	prevOS, prevStart := goos, startCommand
	goos = os
	startCommand = func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return err
	}
	t.Cleanup(func() { goos, startCommand = prevOS, prevStart })
	return &got
}

func TestOpenBrowser(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "http://127.0.0.1:5000"}},
		{"linux", []string{"xdg-open", "http://127.0.0.1:5000"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "http://127.0.0.1:5000"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := stubLauncher(t, tt.goos, nil)

			if err := OpenBrowser("http://127.0.0.1:5000"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(*got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, *got)
			}
		})
	}

	t.Run("launcher table is not mutated", func(t *testing.T) {
		stubLauncher(t, "windows", nil)
		OpenBrowser("http://a.example")
		OpenBrowser("http://b.example")

		if len(browserLaunchers["windows"]) != 2 {
			t.Errorf("launcher grew to %v", browserLaunchers["windows"])
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		got := stubLauncher(t, "plan9", nil)

		if err := OpenBrowser("http://127.0.0.1:5000"); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if len(*got) != 0 {
			t.Errorf("nothing should start, got %v", *got)
		}
	})

	t.Run("launcher fails", func(t *testing.T) {
		stubLauncher(t, "linux", errors.New("exec: not found"))

		if err := OpenBrowser("http://127.0.0.1:5000"); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("non-http URL", func(t *testing.T) {
		got := stubLauncher(t, "linux", nil)

		if err := OpenBrowser("file:///etc/passwd"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if len(*got) != 0 {
			t.Errorf("nothing should start, got %v", *got)
		}
	})
}
