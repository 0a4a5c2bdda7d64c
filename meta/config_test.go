package meta

import (
	"errors"
	"testing"

	"github.com/coregx/brex/compiler"
)

// TestDefaultConfigValues verifies DefaultConfig returns expected field values.
func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()

	if !c.EnablePrefilter {
		t.Error("EnablePrefilter should be true by default")
	}
	if !c.EnableCharScan {
		t.Error("EnableCharScan should be true by default")
	}
	if c.MaxLiterals != 16 {
		t.Errorf("MaxLiterals = %d, want 16", c.MaxLiterals)
	}
	if c.MaxRepeat != 1000 {
		t.Errorf("MaxRepeat = %d, want 1000", c.MaxRepeat)
	}
	if c.MaxSteps != 0 {
		t.Errorf("MaxSteps = %d, want 0", c.MaxSteps)
	}
}

// TestDefaultConfigPassesValidation verifies DefaultConfig always validates.
func TestDefaultConfigPassesValidation(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"max literals zero", func(c *Config) { c.MaxLiterals = 0 }, "MaxLiterals"},
		{"max literals minimum", func(c *Config) { c.MaxLiterals = 1 }, ""},
		{"max literals maximum", func(c *Config) { c.MaxLiterals = 1000 }, ""},
		{"max literals above maximum", func(c *Config) { c.MaxLiterals = 1001 }, "MaxLiterals"},
		{"max literals ignored without prefilter", func(c *Config) {
			c.EnablePrefilter = false
			c.MaxLiterals = 0
		}, ""},
		{"max repeat zero", func(c *Config) { c.MaxRepeat = 0 }, "MaxRepeat"},
		{"max repeat maximum", func(c *Config) { c.MaxRepeat = 100_000 }, ""},
		{"max repeat above maximum", func(c *Config) { c.MaxRepeat = 100_001 }, "MaxRepeat"},
		{"max steps negative", func(c *Config) { c.MaxSteps = -1 }, "MaxSteps"},
		{"max steps set", func(c *Config) { c.MaxSteps = 10 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			err := c.Validate()

			if (err != nil) != (tt.wantField != "") {
				t.Fatalf("Validate() error = %v, want field %q", err, tt.wantField)
			}
			if err == nil {
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "MaxSteps", Message: "must not be negative"}
	want := "brex: invalid config: MaxSteps: must not be negative"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCompileWithInvalidConfig(t *testing.T) {
	c := DefaultConfig()
	c.MaxSteps = -5
	if _, err := CompileWithConfig("abc", c); err == nil {
		t.Fatal("CompileWithConfig accepted an invalid config")
	}
}

func TestCompileWithConfigMaxRepeat(t *testing.T) {
	c := DefaultConfig()
	c.MaxRepeat = 4

	if _, err := CompileWithConfig("a{4}", c); err != nil {
		t.Fatalf("a{4} with MaxRepeat 4: %v", err)
	}
	_, err := CompileWithConfig("a{5}", c)
	if !errors.Is(err, compiler.ErrInvalidQuantifier) {
		t.Fatalf("a{5} with MaxRepeat 4: err = %v, want ErrInvalidQuantifier", err)
	}
}

// TestInvalidConfigReportedBeforeParsing checks that a bad config wins over
// a pattern the bad config would also reject.
func TestInvalidConfigReportedBeforeParsing(t *testing.T) {
	c := DefaultConfig()
	c.MaxRepeat = 0

	_, err := CompileWithConfig("a{2}", c)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "MaxRepeat" {
		t.Fatalf("CompileWithConfig error = %v, want MaxRepeat *ConfigError", err)
	}
	if errors.Is(err, compiler.ErrInvalidQuantifier) {
		t.Error("config error should not be a quantifier error")
	}
}

func TestNewEngineValidatesConfig(t *testing.T) {
	p := compiler.MustCompile("abc")

	c := DefaultConfig()
	c.MaxSteps = -1
	if _, err := NewEngine(p, c); err == nil {
		t.Fatal("NewEngine accepted an invalid config")
	}

	e, err := NewEngine(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsMatch("xabc") {
		t.Error(`IsMatch("xabc") = false`)
	}
}
