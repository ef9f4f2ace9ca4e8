package fixplex

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// PivotStrategy selects how make_feasible picks the next out-of-bounds
// base variable from the patch queue (spec.md §4.7).
type PivotStrategy string

const (
	// StrategyBland always picks the smallest-indexed variable; slow
	// but used as the anti-cycling fallback regardless of Config.
	StrategyBland PivotStrategy = "bland"
	// StrategyGreatestError picks the variable furthest from its
	// nearest bound.
	StrategyGreatestError PivotStrategy = "greatest_error"
	// StrategyLeastError picks the variable closest to its nearest
	// bound.
	StrategyLeastError PivotStrategy = "least_error"
)

// Config tunes the knobs a host embedder may want to adjust without
// recompiling, the same role dominikh-go-tools/config/config.go plays
// for its static-analysis tool set: a small TOML-loadable struct with a
// DefaultConfig fallback when no file is supplied.
type Config struct {
	// Width is the fixed ring width W, in bits, 1..64.
	Width uint `toml:"width"`
	// MaxIterations bounds make_feasible's main loop; exceeding it
	// yields l_undef (LimitReached).
	MaxIterations int `toml:"max_iterations"`
	// BlandsRuleThreshold is the number of times, within one
	// make_feasible call, that checkBlandsRule may see a variable it
	// has already seen leave the basis (counted over all variables
	// together) before switching to Bland's rule (spec.md §4.6).
	BlandsRuleThreshold int `toml:"blands_rule_threshold"`
	// Strategy picks the patch-queue selection strategy (spec.md §4.7).
	Strategy PivotStrategy `toml:"strategy"`
}

// DefaultConfig returns the configuration used when no TOML file is
// supplied: width 32, a generous iteration cap, and the greatest-error
// strategy (fewest pivots in the common case).
func DefaultConfig() Config {
	return Config{
		Width:               32,
		MaxIterations:       10_000,
		BlandsRuleThreshold: 10,
		Strategy:            StrategyGreatestError,
	}
}

// LoadConfig reads a Config from a TOML file, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("fixplex: reading config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("fixplex: decoding config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Width == 0 || c.Width > 64 {
		return fmt.Errorf("fixplex: width %d out of range [1,64]", c.Width)
	}
	switch c.Strategy {
	case StrategyBland, StrategyGreatestError, StrategyLeastError:
	default:
		return fmt.Errorf("fixplex: unknown pivot strategy %q", c.Strategy)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("fixplex: max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.BlandsRuleThreshold <= 0 {
		return fmt.Errorf("fixplex: blands_rule_threshold must be positive, got %d", c.BlandsRuleThreshold)
	}
	return nil
}
