package config

import (
	"os"
	"path/filepath"
	"testing"

	"fftvis/internal/spectro"
)

func writePreset(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPreset(t *testing.T) {
	path := writePreset(t, "bar_count: 64\nfps: 30\nbin_mapping: mel\n")
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.BarCount == nil || *p.BarCount != 64 {
		t.Errorf("BarCount = %v, want 64", p.BarCount)
	}
	if p.BinMapping == nil || *p.BinMapping != "mel" {
		t.Errorf("BinMapping = %v, want mel", p.BinMapping)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/preset.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func noneSet(string) bool { return false }

func TestApplyDefaultsFillsUnsetFields(t *testing.T) {
	path := writePreset(t, "bar_count: 32\ndb_floor: -80\ndb_range: 90\nbin_mapping: log10\n")
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := spectro.Config{BarCount: 64, DBFloor: -80, DBRange: 90}
	if err := p.ApplyDefaults(&cfg, noneSet); err != nil {
		t.Fatal(err)
	}
	if cfg.BarCount != 32 || cfg.DBFloor != -80 || cfg.DBRange != 90 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.BinMapping != spectro.Log10 {
		t.Errorf("BinMapping = %v, want Log10", cfg.BinMapping)
	}
}

func TestApplyDefaultsDoesNotOverrideExplicitlySetFlag(t *testing.T) {
	path := writePreset(t, "bar_count: 32\n")
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := spectro.Config{BarCount: 128}
	isSet := func(name string) bool { return name == "bands" }
	if err := p.ApplyDefaults(&cfg, isSet); err != nil {
		t.Fatal(err)
	}
	if cfg.BarCount != 128 {
		t.Errorf("BarCount = %d, want 128 (explicitly-set flag preserved)", cfg.BarCount)
	}
}

func TestApplyDefaultsDoesNotOverrideExplicitBinMapping(t *testing.T) {
	path := writePreset(t, "bin_mapping: mel\n")
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := spectro.Config{BinMapping: spectro.Log10}
	isSet := func(name string) bool { return name == "bin-mapping" }
	if err := p.ApplyDefaults(&cfg, isSet); err != nil {
		t.Fatal(err)
	}
	if cfg.BinMapping != spectro.Log10 {
		t.Errorf("BinMapping = %v, want Log10 (explicitly-set flag preserved)", cfg.BinMapping)
	}
}

func TestApplyDefaultsRejectsUnknownBinMapping(t *testing.T) {
	path := writePreset(t, "bin_mapping: bogus\n")
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := spectro.Config{}
	if err := p.ApplyDefaults(&cfg, noneSet); err == nil {
		t.Fatal("expected error for unknown bin_mapping")
	}
}
