package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Blur != 3 || cfg.CannyLow != 50 || cfg.CannyHigh != 150 || cfg.MorphKernel != 2 {
		t.Errorf("preprocessing defaults changed: %+v", cfg)
	}
	if cfg.MinContourArea != 1000 || cfg.Epsilon != 2 || cfg.MinSublotArea != 500 || cfg.MinAngle != 40 {
		t.Errorf("geometry defaults changed: %+v", cfg)
	}
	if cfg.MergeDistancePercent != 0.005 || cfg.BorderMergePercent != 0.005 {
		t.Errorf("merge defaults changed: %+v", cfg)
	}
	if cfg.DPI != 600 {
		t.Errorf("DPI: got %d, want 600", cfg.DPI)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"even blur", func(c *Config) { c.Blur = 4 }, "blur"},
		{"zero blur", func(c *Config) { c.Blur = 0 }, "blur"},
		{"low above high", func(c *Config) { c.CannyLow = 200 }, "canny_low"},
		{"negative high", func(c *Config) { c.CannyHigh = -1 }, "canny_high"},
		{"zero morph kernel", func(c *Config) { c.MorphKernel = 0 }, "morph_kernel"},
		{"negative contour area", func(c *Config) { c.MinContourArea = -5 }, "min_contour_area"},
		{"negative epsilon", func(c *Config) { c.Epsilon = -0.1 }, "epsilon"},
		{"angle above 180", func(c *Config) { c.MinAngle = 181 }, "min_angle"},
		{"merge percent of one", func(c *Config) { c.MergeDistancePercent = 1 }, "merge_distance_percent"},
		{"negative border percent", func(c *Config) { c.BorderMergePercent = -0.01 }, "border_merge_percent"},
		{"zero clip limit", func(c *Config) { c.CLAHEClipLimit = 0 }, "clahe_clip_limit"},
		{"zero dpi", func(c *Config) { c.DPI = 0 }, "dpi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
			if cerr.Field != tt.wantField {
				t.Errorf("Field: got %q, want %q", cerr.Field, tt.wantField)
			}
		})
	}
}

func TestParse_Formats(t *testing.T) {
	want := Default()
	want.Blur = 5
	want.CannyLow = 30
	want.MinAngle = 35.5

	tests := []struct {
		name string
		ext  string
		doc  string
	}{
		{"toml", ".toml", "blur = 5\ncanny_low = 30\nmin_angle = 35.5\n"},
		{"yaml", ".yaml", "blur: 5\ncanny_low: 30\nmin_angle: 35.5\n"},
		{"yml", ".yml", "blur: 5\ncanny_low: 30\nmin_angle: 35.5\n"},
		{"json", ".json", `{"blur": 5, "canny_low": 30, "min_angle": 35.5}`},
		{"sniffed json", "", `{"blur": 5, "canny_low": 30, "min_angle": 35.5}`},
		{"sniffed toml", "", "blur = 5\ncanny_low = 30\nmin_angle = 35.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.doc), tt.ext)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		doc  string
	}{
		{"unknown toml key", ".toml", "blurr = 5\n"},
		{"unknown yaml key", ".yaml", "blurr: 5\n"},
		{"unknown json key", ".json", `{"blurr": 5}`},
		{"json wrong type", ".json", `{"blur": "five"}`},
		{"toml wrong type", ".toml", `blur = "five"`},
		{"unsupported extension", ".ini", "blur=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.ext)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
		})
	}
}

func TestApplyJSON_KeepsUnsetOptions(t *testing.T) {
	cfg := Default()
	if err := ApplyJSON(&cfg, []byte(`{"epsilon": 4}`)); err != nil {
		t.Fatalf("ApplyJSON: %v", err)
	}
	if cfg.Epsilon != 4 {
		t.Errorf("Epsilon: got %v, want 4", cfg.Epsilon)
	}
	if cfg.Blur != DefaultBlur {
		t.Errorf("Blur should keep its default, got %d", cfg.Blur)
	}

	before := cfg
	if err := ApplyJSON(&cfg, []byte(`{"epsilon": "x"}`)); err == nil {
		t.Fatal("expected error")
	}
	if cfg != before {
		t.Error("failed ApplyJSON must not modify the config")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(path, []byte("epsilon = 3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Epsilon != 3.5 {
		t.Errorf("Epsilon: got %v, want 3.5", cfg.Epsilon)
	}

	if _, err := LoadFromPath(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteTOML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Epsilon = 1.25

	var buf bytes.Buffer
	if err := WriteTOML(&buf, cfg); err != nil {
		t.Fatalf("WriteTOML: %v", err)
	}
	got, err := Parse(buf.Bytes(), ".toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
