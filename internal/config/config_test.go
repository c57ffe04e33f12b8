package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_MatchesSpecValues(t *testing.T) {
	cfg := Defaults()
	if cfg.Diagnostic.MaxItemsPerSubskill != 5 {
		t.Errorf("diagnostic.max_items_per_subskill = %v, want 5", cfg.Diagnostic.MaxItemsPerSubskill)
	}
	if cfg.BKT.DefaultSlip != 0.10 || cfg.BKT.DefaultGuess != 0.25 {
		t.Errorf("bkt defaults = %+v", cfg.BKT)
	}
	if cfg.SRS.MaxIntervalDays != 365 || cfg.SRS.MinEase != 1.3 {
		t.Errorf("srs defaults = %+v", cfg.SRS)
	}
	if cfg.IRT.QuadratureNodes != 81 {
		t.Errorf("irt.quadrature_nodes = %v, want 81", cfg.IRT.QuadratureNodes)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("Load(\"\") = %+v, want Defaults()", cfg)
	}
}

func TestLoad_OverridesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adaptprep.toml")
	body := `
[diagnostic]
se_threshold = 0.25

[bkt]
default_slip = 0.15
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Diagnostic.SEThreshold != 0.25 {
		t.Errorf("se_threshold = %v, want 0.25", cfg.Diagnostic.SEThreshold)
	}
	if cfg.BKT.DefaultSlip != 0.15 {
		t.Errorf("default_slip = %v, want 0.15", cfg.BKT.DefaultSlip)
	}
	// Untouched fields keep their default.
	if cfg.Diagnostic.MaxItemsPerSubskill != 5 {
		t.Errorf("max_items_per_subskill = %v, want unchanged default 5", cfg.Diagnostic.MaxItemsPerSubskill)
	}
	if cfg.BKT.DefaultGuess != 0.25 {
		t.Errorf("default_guess = %v, want unchanged default 0.25", cfg.BKT.DefaultGuess)
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load of a missing file: want error, got nil")
	}
}

func TestSelectorConstraints_PracticeVsDiagnostic(t *testing.T) {
	cfg := Defaults()
	practiceC := cfg.SelectorConstraints(false)
	diagnosticC := cfg.SelectorConstraints(true)

	if practiceC.MaxPerSubskill != 10 {
		t.Errorf("practice MaxPerSubskill = %v, want 10", practiceC.MaxPerSubskill)
	}
	if diagnosticC.MaxPerSubskill != 5 {
		t.Errorf("diagnostic MaxPerSubskill = %v, want 5", diagnosticC.MaxPerSubskill)
	}
}

func TestDiagnosticConfig_ReflectsLoadedThresholds(t *testing.T) {
	cfg := Defaults()
	cfg.Diagnostic.SEThreshold = 0.20
	cfg.Diagnostic.MaxItemsPerSubskill = 8

	dcfg := cfg.DiagnosticConfig()
	if dcfg.SEThreshold != 0.20 {
		t.Errorf("SEThreshold = %v, want 0.20", dcfg.SEThreshold)
	}
	if dcfg.MaxItemsPerSubskill != 8 {
		t.Errorf("MaxItemsPerSubskill = %v, want 8", dcfg.MaxItemsPerSubskill)
	}
}

func TestPracticeConfig_ReflectsLoadedBKTAndSelectorThresholds(t *testing.T) {
	cfg := Defaults()
	cfg.BKT.DefaultSlip = 0.18
	cfg.BKT.DefaultGuess = 0.22
	cfg.Selector.MaxPerSubskillPractice = 15

	pcfg := cfg.PracticeConfig()
	if pcfg.Slip != 0.18 {
		t.Errorf("Slip = %v, want 0.18", pcfg.Slip)
	}
	if pcfg.Guess != 0.22 {
		t.Errorf("Guess = %v, want 0.22", pcfg.Guess)
	}
	if pcfg.Constraints.MaxPerSubskill != 15 {
		t.Errorf("Constraints.MaxPerSubskill = %v, want 15", pcfg.Constraints.MaxPerSubskill)
	}
}
