package coordination

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/relaycoord/core/shortcircuit"
)

// DefaultMinMargin is the minimum coordination time interval in seconds.
const DefaultMinMargin = 0.3

// DefaultTestCurrents are used when neither explicit currents nor a network
// model are available.
var DefaultTestCurrents = []float64{100, 200, 500, 1000, 2000, 5000}

// Config holds the analysis settings. It replaces any global default.
type Config struct {
	// MinMargin is the required coordination time interval in seconds. Nil
	// means DefaultMinMargin; an explicit zero is kept.
	MinMargin       *float64          `json:"min_margin_s,omitempty" yaml:"min_margin_s,omitempty"`
	DefaultCurrents []float64         `json:"default_currents" yaml:"default_currents"`
	Case            shortcircuit.Case `json:"case" yaml:"case"`
	BaseMVA         float64           `json:"base_mva" yaml:"base_mva"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.MinMargin == nil {
		m := DefaultMinMargin
		c.MinMargin = &m
	}
	if len(c.DefaultCurrents) == 0 {
		c.DefaultCurrents = append([]float64(nil), DefaultTestCurrents...)
	}
	if c.Case == "" {
		c.Case = shortcircuit.CaseMax
	}
	if c.BaseMVA == 0 {
		c.BaseMVA = shortcircuit.DefaultBaseMVA
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if m := c.Margin(); m < 0 || math.IsNaN(m) {
		return errors.New("min margin must not be negative")
	}
	if c.BaseMVA <= 0 {
		return errors.New("base MVA must be positive")
	}
	if _, err := shortcircuit.ParseCase(string(c.Case)); err != nil {
		return err
	}
	return validateCurrents(c.DefaultCurrents)
}

// Margin returns the configured minimum margin or the default.
func (c Config) Margin() float64 {
	if c.MinMargin == nil {
		return DefaultMinMargin
	}
	return *c.MinMargin
}

func validateCurrents(cs []float64) error {
	for _, i := range cs {
		if !(i > 0) {
			return fmt.Errorf("test current must be positive, got %v", i)
		}
	}
	return nil
}
