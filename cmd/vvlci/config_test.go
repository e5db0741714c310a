package main

import (
	"strings"
	"testing"

	"github.com/vvl-tools/vvlci/internal/config"
)

func TestDisplayConfigKey_UnknownKey(t *testing.T) {
	cfg := config.Default()

	err := displayConfigKey(cfg, "build.nope")
	if err == nil {
		t.Fatal("displayConfigKey() error = nil, want error for unknown key")
	}
	if !strings.Contains(err.Error(), "build.nope") {
		t.Errorf("error = %v, want it to name the unknown key", err)
	}
}

func TestHistoryPathDisplay(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"explicit path shown", "/tmp/h.db", "/tmp/h.db"},
		{"empty path shows default marker", "", "(default)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.History.Path = tt.path
			if got := historyPathDisplay(cfg); got != tt.want {
				t.Errorf("historyPathDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion_NotEmpty(t *testing.T) {
	if Version() == "" {
		t.Error("Version() = empty, want the embedded version string")
	}
}
