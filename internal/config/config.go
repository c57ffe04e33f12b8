// Package config defines the single recognized-options record and its
// TOML loader. config.Defaults() alone is enough to run the core; Load
// exists so a host application (or the demo CLI) can override thresholds
// without recompiling.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/diagnostic"
	"github.com/abhisek/adaptprep/internal/practice"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/abhisek/adaptprep/internal/spacedrep"
)

// Diagnostic mirrors diagnostic.Config in TOML-tagged form.
type Diagnostic struct {
	MaxItemsPerSubskill int     `toml:"max_items_per_subskill"`
	SEThreshold         float64 `toml:"se_threshold"`
}

// SelectorConfig mirrors selector.Constraints plus the target-accuracy
// knobs that live as package constants in internal/selector; it is
// carried here so a config file can name them even though the current
// selector does not yet accept overrides for the accuracy targets.
type SelectorConfig struct {
	MaxPerSubskillPractice   int     `toml:"max_per_subskill_practice"`
	MaxPerSubskillDiagnostic int     `toml:"max_per_subskill_diagnostic"`
	MinPerSubskill           int     `toml:"min_per_subskill"`
	MaxExposure              int     `toml:"max_exposure"`
	TargetAccuracyLearning   float64 `toml:"target_accuracy_learning"`
	TargetAccuracyAssessment float64 `toml:"target_accuracy_assessment"`
	AccuracyTolerance        float64 `toml:"accuracy_tolerance"`
}

// BKT mirrors the bkt package's default parameters.
type BKT struct {
	DefaultGuess  float64 `toml:"default_guess"`
	DefaultSlip   float64 `toml:"default_slip"`
	DefaultForget float64 `toml:"default_forget"`
	DefaultLearn  float64 `toml:"default_learn"`
	LearnRateMin  float64 `toml:"learn_rate_min"`
	LearnRateMax  float64 `toml:"learn_rate_max"`
}

// SRS mirrors the spaced-repetition scheduler's tunables.
type SRS struct {
	MaxIntervalDays     int     `toml:"max_interval_days"`
	MinEase             float64 `toml:"min_ease"`
	TargetRetrievability float64 `toml:"target_retrievability"`
}

// IRT mirrors the IRT engine's tunables.
type IRT struct {
	QuadratureNodes int     `toml:"quadrature_nodes"`
	ThetaMin        float64 `toml:"theta_min"`
	ThetaMax        float64 `toml:"theta_max"`
	SEFloor         float64 `toml:"se_floor"`
}

// Config is the single recognized-options record, with every field
// carrying a sensible default.
type Config struct {
	Diagnostic Diagnostic     `toml:"diagnostic"`
	Selector   SelectorConfig `toml:"selector"`
	BKT        BKT            `toml:"bkt"`
	SRS        SRS            `toml:"srs"`
	IRT        IRT            `toml:"irt"`
}

// Defaults returns the recognized-options record with every field at its
// default value. It is always valid; nothing further needs to load for
// the core to run.
func Defaults() Config {
	return Config{
		Diagnostic: Diagnostic{
			MaxItemsPerSubskill: diagnostic.DefaultConfig().MaxItemsPerSubskill,
			SEThreshold:         diagnostic.DefaultConfig().SEThreshold,
		},
		Selector: SelectorConfig{
			MaxPerSubskillPractice:   practice.DefaultConfig().Constraints.MaxPerSubskill,
			MaxPerSubskillDiagnostic: diagnostic.DefaultConfig().MaxItemsPerSubskill,
			MinPerSubskill:           practice.DefaultConfig().Constraints.MinPerSubskill,
			MaxExposure:              practice.DefaultConfig().Constraints.MaxExposure,
			TargetAccuracyLearning:   0.70,
			TargetAccuracyAssessment: 0.50,
			AccuracyTolerance:        0.15,
		},
		BKT: BKT{
			DefaultGuess:  bkt.DefaultGuess,
			DefaultSlip:   bkt.DefaultSlip,
			DefaultForget: bkt.DefaultForget,
			DefaultLearn:  bkt.DefaultLearn,
			LearnRateMin:  bkt.LearnRateMin,
			LearnRateMax:  bkt.LearnRateMax,
		},
		SRS: SRS{
			MaxIntervalDays:      spacedrep.MaxIntervalDays,
			MinEase:              spacedrep.MinEase,
			TargetRetrievability: 0.90,
		},
		IRT: IRT{
			QuadratureNodes: 81,
			ThetaMin:        -4,
			ThetaMax:        4,
			SEFloor:         0.01,
		},
	}
}

// Load decodes a TOML file at path into a Config seeded with Defaults, so
// a file that only overrides a handful of fields still yields a complete,
// valid Config. An empty path returns Defaults() without touching the
// filesystem.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// SelectorConstraints builds selector.Constraints for practice or
// diagnostic use from the loaded config.
func (c Config) SelectorConstraints(forDiagnostic bool) selector.Constraints {
	max := c.Selector.MaxPerSubskillPractice
	if forDiagnostic {
		max = c.Selector.MaxPerSubskillDiagnostic
	}
	return selector.Constraints{
		MaxPerSubskill: max,
		MinPerSubskill: c.Selector.MinPerSubskill,
		MaxExposure:    c.Selector.MaxExposure,
	}
}

// DiagnosticConfig builds a diagnostic.Config from the loaded config.
func (c Config) DiagnosticConfig() diagnostic.Config {
	return diagnostic.Config{
		MaxItemsPerSubskill: c.Diagnostic.MaxItemsPerSubskill,
		SEThreshold:         c.Diagnostic.SEThreshold,
	}
}

// PracticeConfig builds a practice.Config from the loaded config, with
// practice.DefaultConfig's session-shape fields (QuestionCount, Mode,
// TargetSubskills) left at their defaults since those are per-session
// choices a caller overrides explicitly, not tunable thresholds.
func (c Config) PracticeConfig() practice.Config {
	cfg := practice.DefaultConfig()
	cfg.Constraints = c.SelectorConstraints(false)
	cfg.Slip = c.BKT.DefaultSlip
	cfg.Guess = c.BKT.DefaultGuess
	return cfg
}
