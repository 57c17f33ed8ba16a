package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
	"github.com/kilianp07/relaycoord/core/tcc"
)

// StudyConfig drives a coordination study run.
type StudyConfig struct {
	// MinMarginS is nil until defaults are applied; an explicit zero is kept.
	MinMarginS   *float64  `json:"min_margin_s"`
	TestCurrents []float64 `json:"test_currents"`
	// FaultBuses restricts derived scenarios to these bus indices.
	FaultBuses  []int     `json:"fault_buses"`
	FaultTypes  []string  `json:"fault_types"`
	Case        string    `json:"case"`
	BaseMVA     float64   `json:"base_mva"`
	FrequencyHz float64   `json:"frequency_hz"`
	OutputDir   string    `json:"output_dir"`
	ExportCSV   bool      `json:"export_csv"`
	ExportJSON  bool      `json:"export_json"`
	Plot        bool      `json:"plot"`
	TCC         TCCConfig `json:"tcc"`
}

// TCCConfig sets the sampling and size of time-current charts.
type TCCConfig struct {
	CurrentMin float64 `json:"current_min"`
	CurrentMax float64 `json:"current_max"`
	Points     int     `json:"points"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// SetDefaults applies sane defaults.
func (c *StudyConfig) SetDefaults() {
	if c.MinMarginS == nil {
		m := coordination.DefaultMinMargin
		c.MinMarginS = &m
	}
	if len(c.FaultTypes) == 0 {
		c.FaultTypes = []string{string(device.Phase), string(device.Ground)}
	}
	if c.Case == "" {
		c.Case = string(shortcircuit.CaseMax)
	}
	if c.BaseMVA == 0 {
		c.BaseMVA = shortcircuit.DefaultBaseMVA
	}
	if c.FrequencyHz == 0 {
		c.FrequencyHz = device.DefaultFrequencyHz
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.TCC.Points == 0 {
		c.TCC.Points = tcc.DefaultPoints
	}
	if c.TCC.Width == 0 {
		c.TCC.Width = 900
	}
	if c.TCC.Height == 0 {
		c.TCC.Height = 600
	}
}

// Validate checks mandatory fields.
func (c StudyConfig) Validate() error {
	if c.MinMarginS != nil && *c.MinMarginS < 0 {
		return errors.New("min_margin_s must not be negative")
	}
	for _, i := range c.TestCurrents {
		if !(i > 0) {
			return fmt.Errorf("test current must be positive, got %v", i)
		}
	}
	if _, err := c.ParsedFaultTypes(); err != nil {
		return err
	}
	if _, err := shortcircuit.ParseCase(c.Case); err != nil {
		return err
	}
	if c.BaseMVA <= 0 {
		return errors.New("base_mva must be positive")
	}
	if c.FrequencyHz != 50 && c.FrequencyHz != 60 {
		return fmt.Errorf("frequency_hz must be 50 or 60, got %v", c.FrequencyHz)
	}
	if c.TCC.Points < 2 {
		return fmt.Errorf("tcc.points must be at least 2, got %d", c.TCC.Points)
	}
	if c.TCC.CurrentMin < 0 || c.TCC.CurrentMax < 0 ||
		(c.TCC.CurrentMin > 0 && c.TCC.CurrentMax > 0 && c.TCC.CurrentMax <= c.TCC.CurrentMin) {
		return fmt.Errorf("invalid tcc current range [%v, %v]", c.TCC.CurrentMin, c.TCC.CurrentMax)
	}
	return nil
}

// ParsedFaultTypes returns the fault types in order, without duplicates.
func (c StudyConfig) ParsedFaultTypes() ([]device.FaultType, error) {
	seen := map[device.FaultType]bool{}
	var out []device.FaultType
	for _, s := range c.FaultTypes {
		ft, err := device.ParseFaultType(s)
		if err != nil {
			return nil, err
		}
		if !seen[ft] {
			seen[ft] = true
			out = append(out, ft)
		}
	}
	return out, nil
}

// Coordination returns the engine settings.
func (c StudyConfig) Coordination() coordination.Config {
	cfg := coordination.Config{
		MinMargin: c.MinMarginS,
		Case:      shortcircuit.Case(c.Case),
		BaseMVA:   c.BaseMVA,
	}
	cfg.SetDefaults()
	return cfg
}
