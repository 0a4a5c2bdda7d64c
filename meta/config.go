package meta

import (
	"github.com/coregx/brex/compiler"
	"github.com/coregx/brex/prefilter"
)

// Config controls engine construction and search limits.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.EnablePrefilter = false // always run the VM at every offset
//	engine, err := meta.CompileWithConfig(`(\w+)@example\.com`, config)
type Config struct {
	// EnablePrefilter enables literal-based candidate filtering.
	// Default: true
	EnablePrefilter bool

	// EnableCharScan enables the single-instruction scan for patterns that
	// consist of one character test, such as `\d` or `[a-f]`.
	// Default: true
	EnableCharScan bool

	// MaxLiterals limits the number of literals extracted for prefiltering.
	// Default: 16
	MaxLiterals int

	// MaxRepeat caps the bounds accepted in {m,n}.
	// Default: 1000
	MaxRepeat int

	// MaxSteps bounds the instructions executed by one VM attempt. An
	// attempt that exceeds it is abandoned and counts as no match at that
	// offset. Zero means unlimited.
	// Default: 0
	MaxSteps int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter: true,
		EnableCharScan:  true,
		MaxLiterals:     prefilter.DefaultMaxLiterals,
		MaxRepeat:       compiler.DefaultOptions().MaxRepeat,
		MaxSteps:        0,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxLiterals: 1 to 1,000 (when the prefilter is enabled)
//   - MaxRepeat: 1 to 100,000
//   - MaxSteps: 0 or more
func (c Config) Validate() error {
	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{
				Field:   "MaxLiterals",
				Message: "must be between 1 and 1,000",
			}
		}
	}

	if c.MaxRepeat < 1 || c.MaxRepeat > 100_000 {
		return &ConfigError{
			Field:   "MaxRepeat",
			Message: "must be between 1 and 100,000",
		}
	}

	if c.MaxSteps < 0 {
		return &ConfigError{
			Field:   "MaxSteps",
			Message: "must not be negative",
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "brex: invalid config: " + e.Field + ": " + e.Message
}
