// Package studyfile loads a network and its protective devices from a YAML
// study file. Elements reference buses, CTs and breakers by name:
//
//	name: plant
//	buses:
//	  - {name: GRID, vn_kv: 20}
//	  - {name: F1, vn_kv: 20}
//	sources:
//	  - {name: utility, bus: GRID, sk_max_mva: 500, rx: 0.1, x0x1: 1}
//	lines:
//	  - {name: L1, from: GRID, to: F1, length_km: 2, r_ohm_per_km: 0.16, x_ohm_per_km: 0.11}
//	cts:
//	  - {name: CT1, bus: GRID, element: L1, element_type: line, primary_rating: 400, secondary_rating: 5}
//	breakers:
//	  - {name: CB1, bus: GRID, rated_voltage_kv: 24, continuous_current_a: 630, interrupting_rating_ka_sym: 25, operating_time_cycles: 3, cb_type: VCB}
//	relays:
//	  - name: R1
//	    ct: CT1
//	    cb: CB1
//	    phase:
//	      timed: {pickup: 400, curve: IEC_NI, tms: 0.1}
package studyfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/network"
)

// File is the document layout.
type File struct {
	Name         string        `yaml:"name"`
	Buses        []Bus         `yaml:"buses"`
	Sources      []Source      `yaml:"sources"`
	Lines        []Line        `yaml:"lines"`
	Transformers []Transformer `yaml:"transformers"`
	Loads        []Load        `yaml:"loads"`
	CTs          []CT          `yaml:"cts"`
	Breakers     []Breaker     `yaml:"breakers"`
	Relays       []Relay       `yaml:"relays"`
	// TestCurrents are through-fault currents in amperes evaluated in place of
	// the short-circuit scenarios when set.
	TestCurrents []float64 `yaml:"test_currents"`
}

type Bus struct {
	Name string  `yaml:"name"`
	VnKV float64 `yaml:"vn_kv"`
}

type Source struct {
	Name     string  `yaml:"name"`
	Bus      string  `yaml:"bus"`
	SkMaxMVA float64 `yaml:"sk_max_mva"`
	SkMinMVA float64 `yaml:"sk_min_mva"`
	RX       float64 `yaml:"rx"`
	X0X1     float64 `yaml:"x0x1"`
	R0X0     float64 `yaml:"r0x0"`
}

type Line struct {
	Name       string  `yaml:"name"`
	From       string  `yaml:"from"`
	To         string  `yaml:"to"`
	LengthKM   float64 `yaml:"length_km"`
	ROhmPerKM  float64 `yaml:"r_ohm_per_km"`
	XOhmPerKM  float64 `yaml:"x_ohm_per_km"`
	R0OhmPerKM float64 `yaml:"r0_ohm_per_km"`
	X0OhmPerKM float64 `yaml:"x0_ohm_per_km"`
}

type Transformer struct {
	Name        string  `yaml:"name"`
	HV          string  `yaml:"hv"`
	LV          string  `yaml:"lv"`
	SnMVA       float64 `yaml:"sn_mva"`
	VnHVKV      float64 `yaml:"vn_hv_kv"`
	VnLVKV      float64 `yaml:"vn_lv_kv"`
	VkPercent   float64 `yaml:"vk_percent"`
	VkrPercent  float64 `yaml:"vkr_percent"`
	VectorGroup string  `yaml:"vector_group"`
}

type Load struct {
	Name  string  `yaml:"name"`
	Bus   string  `yaml:"bus"`
	PMW   float64 `yaml:"p_mw"`
	QMVAr float64 `yaml:"q_mvar"`
}

type CT struct {
	Name string `yaml:"name"`
	Bus  string `yaml:"bus"`
	// Element names a line, transformer or load according to ElementType.
	Element           string             `yaml:"element"`
	ElementType       device.ElementType `yaml:"element_type"`
	PrimaryRating     float64            `yaml:"primary_rating"`
	SecondaryRating   float64            `yaml:"secondary_rating"`
	AccuracyClass     string             `yaml:"accuracy_class"`
	AccuracyClassANSI string             `yaml:"accuracy_class_ansi"`
	BurdenVA          float64            `yaml:"burden_va"`
}

type Breaker struct {
	Name                     string             `yaml:"name"`
	Bus                      string             `yaml:"bus"`
	RatedVoltageKV           float64            `yaml:"rated_voltage_kv"`
	ContinuousCurrentA       float64            `yaml:"continuous_current_a"`
	InterruptingRatingKASym  float64            `yaml:"interrupting_rating_ka_sym"`
	InterruptingRatingKAAsym float64            `yaml:"interrupting_rating_ka_asym"`
	MakingCapacityKAPeak     float64            `yaml:"making_capacity_ka_peak"`
	OperatingTimeCycles      float64            `yaml:"operating_time_cycles"`
	OperatingTimeMS          float64            `yaml:"operating_time_ms"`
	FrequencyHz              float64            `yaml:"frequency_hz"`
	Type                     device.BreakerType `yaml:"cb_type"`
}

type Relay struct {
	Name         string            `yaml:"name"`
	Manufacturer string            `yaml:"manufacturer"`
	Model        string            `yaml:"model"`
	CT           string            `yaml:"ct"`
	CB           string            `yaml:"cb"`
	Phase        device.Protection `yaml:"phase"`
	Ground       device.Protection `yaml:"ground"`
}

// Study is a loaded study file.
type Study struct {
	Name         string
	Grid         *network.Grid
	Devices      *device.Table
	TestCurrents []float64
}

// Options adjusts how a file is turned into a Study.
type Options struct {
	// FrequencyHz is applied to breakers that do not set their own.
	FrequencyHz float64
}

// Load reads and builds the study file at path.
func Load(path string, o Options) (*Study, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Read(bytes.NewReader(b), o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a study document from r. Unknown keys are rejected.
func Read(r io.Reader, o Options) (*Study, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty study file")
		}
		return nil, fmt.Errorf("decode study: %w", err)
	}
	return f.Build(o)
}

// Build resolves names and validates every element and device.
func (f File) Build(o Options) (*Study, error) {
	g := network.NewGrid()
	for _, b := range f.Buses {
		if b.Name == "" {
			return nil, fmt.Errorf("bus %d: name is required", len(g.BusList))
		}
		if _, dup := g.BusByName(b.Name); dup {
			return nil, fmt.Errorf("duplicate bus %q", b.Name)
		}
		g.AddBus(b.Name, b.VnKV)
	}
	bus := func(kind, name, ref string) (int, error) {
		i, ok := g.BusByName(ref)
		if !ok {
			return -1, fmt.Errorf("%s %q: %w %q", kind, name, network.ErrUnknownBus, ref)
		}
		return i, nil
	}

	for _, s := range f.Sources {
		b, err := bus("source", s.Name, s.Bus)
		if err != nil {
			return nil, err
		}
		g.AddSource(network.Source{Name: s.Name, Bus: b, SkMaxMVA: s.SkMaxMVA, SkMinMVA: s.SkMinMVA,
			RX: s.RX, X0X1: s.X0X1, R0X0: s.R0X0})
	}
	for _, l := range f.Lines {
		from, err := bus("line", l.Name, l.From)
		if err != nil {
			return nil, err
		}
		to, err := bus("line", l.Name, l.To)
		if err != nil {
			return nil, err
		}
		g.AddLine(network.Line{Name: l.Name, FromBus: from, ToBus: to, LengthKM: l.LengthKM,
			ROhmPerKM: l.ROhmPerKM, XOhmPerKM: l.XOhmPerKM, R0OhmPerKM: l.R0OhmPerKM, X0OhmPerKM: l.X0OhmPerKM})
	}
	for _, t := range f.Transformers {
		hv, err := bus("transformer", t.Name, t.HV)
		if err != nil {
			return nil, err
		}
		lv, err := bus("transformer", t.Name, t.LV)
		if err != nil {
			return nil, err
		}
		g.AddTransformer(network.Transformer{Name: t.Name, HVBus: hv, LVBus: lv, SnMVA: t.SnMVA,
			VnHVKV: t.VnHVKV, VnLVKV: t.VnLVKV, VkPercent: t.VkPercent, VkrPercent: t.VkrPercent,
			VectorGroup: t.VectorGroup})
	}
	for _, l := range f.Loads {
		b, err := bus("load", l.Name, l.Bus)
		if err != nil {
			return nil, err
		}
		g.AddLoad(network.Load{Name: l.Name, Bus: b, PMW: l.PMW, QMVAr: l.QMVAr})
	}
	if err := network.Validate(g); err != nil {
		return nil, err
	}

	devs := device.NewTable()
	for _, c := range f.CTs {
		b, err := bus("CT", c.Name, c.Bus)
		if err != nil {
			return nil, err
		}
		ct := device.CT{Name: c.Name, Bus: b, ElementType: c.ElementType,
			PrimaryRating: c.PrimaryRating, SecondaryRating: c.SecondaryRating,
			AccuracyClass: c.AccuracyClass, AccuracyClassANSI: c.AccuracyClassANSI, BurdenVA: c.BurdenVA}
		if c.Element != "" {
			idx, err := elementIndex(g, c.ElementType, c.Element)
			if err != nil {
				return nil, fmt.Errorf("CT %q: %w", c.Name, err)
			}
			ct.Element = &idx
		}
		if _, err := devs.AddCT(ct); err != nil {
			return nil, err
		}
	}
	for _, c := range f.Breakers {
		b, err := bus("breaker", c.Name, c.Bus)
		if err != nil {
			return nil, err
		}
		freq := c.FrequencyHz
		if freq == 0 {
			freq = o.FrequencyHz
		}
		cb := device.CircuitBreaker{Name: c.Name, Bus: b, RatedVoltageKV: c.RatedVoltageKV,
			ContinuousCurrentA: c.ContinuousCurrentA, InterruptingRatingKASym: c.InterruptingRatingKASym,
			InterruptingRatingKAAsym: c.InterruptingRatingKAAsym, MakingCapacityKAPeak: c.MakingCapacityKAPeak,
			OperatingTimeCycles: c.OperatingTimeCycles, OperatingTimeMS: c.OperatingTimeMS,
			FrequencyHz: freq, Type: c.Type}
		if _, err := devs.AddCB(cb); err != nil {
			return nil, err
		}
	}
	for _, r := range f.Relays {
		ct, ok := devs.CTIndex(r.CT)
		if !ok {
			return nil, fmt.Errorf("relay %q: unknown CT %q", r.Name, r.CT)
		}
		cb, ok := devs.CBIndex(r.CB)
		if !ok {
			return nil, fmt.Errorf("relay %q: unknown breaker %q", r.Name, r.CB)
		}
		if _, err := devs.AddRelay(device.Relay{Name: r.Name, Manufacturer: r.Manufacturer, Model: r.Model,
			CT: ct, CB: cb, Phase: r.Phase, Ground: r.Ground}); err != nil {
			return nil, err
		}
	}
	for _, i := range f.TestCurrents {
		if !(i > 0) {
			return nil, fmt.Errorf("test current must be positive, got %v", i)
		}
	}
	return &Study{Name: f.Name, Grid: g, Devices: devs, TestCurrents: f.TestCurrents}, nil
}

func elementIndex(g *network.Grid, t device.ElementType, name string) (int, error) {
	switch t {
	case device.ElementLine:
		for i, l := range g.LineList {
			if l.Name == name {
				return i, nil
			}
		}
	case device.ElementTrafo:
		for i, tr := range g.TransformerList {
			if tr.Name == name {
				return i, nil
			}
		}
	case device.ElementLoad:
		for i, l := range g.LoadList {
			if l.Name == name {
				return i, nil
			}
		}
	default:
		return -1, fmt.Errorf("element %q needs element_type line, trafo or load", name)
	}
	return -1, fmt.Errorf("no %s named %q", t, name)
}
