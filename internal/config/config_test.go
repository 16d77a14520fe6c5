package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Match.Threshold != 0.75 {
		t.Errorf("default threshold = %v, want 0.75", cfg.Match.Threshold)
	}
	if cfg.Match.NameWeight != 1 || cfg.Match.SizeWeight != 1 {
		t.Errorf("default weights = %v/%v, want 1/1", cfg.Match.NameWeight, cfg.Match.SizeWeight)
	}
	if cfg.Addr() == "" {
		t.Error("empty addr")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "1.5")
	if _, err := Load(); err == nil {
		t.Error("expected fatal config error for threshold out of range")
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	// опечатка в числовой переменной — ошибка старта, не тихий дефолт
	tests := []struct {
		key string
		val string
	}{
		{"PORT", "banana"},
		{"PORT", "0"},
		{"MAX_UPLOAD_MB", "-5"},
		{"MATCH_THRESHOLD", "abc"},
		{"MATCH_WORKERS", "two"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestLoadStopwordsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "stopwords.json")
	if err := os.WriteFile(f, []byte(`{"rami_levy": ["מבצע", "חדש"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STOPWORDS_FILE", f)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Match.ChainStopwords["rami_levy"]) != 2 {
		t.Errorf("stopwords not loaded: %v", cfg.Match.ChainStopwords)
	}
}
