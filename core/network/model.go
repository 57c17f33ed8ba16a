package network

import (
	"errors"
	"fmt"
)

// ErrUnknownBus is returned when an element references a bus that does not exist.
var ErrUnknownBus = errors.New("unknown bus")

// Bus is a node of the network. Index is its identity.
type Bus struct {
	Index int     `json:"index" yaml:"index"`
	Name  string  `json:"name" yaml:"name"`
	VnKV  float64 `json:"vn_kv" yaml:"vn_kv"`
}

// Source is an external grid feeder described by its short-circuit power.
type Source struct {
	Name string `json:"name" yaml:"name"`
	Bus  int    `json:"bus" yaml:"bus"`
	// SkMaxMVA and SkMinMVA are the initial short-circuit powers S''kQ.
	// SkMinMVA falls back to SkMaxMVA when zero.
	SkMaxMVA float64 `json:"sk_max_mva" yaml:"sk_max_mva"`
	SkMinMVA float64 `json:"sk_min_mva,omitempty" yaml:"sk_min_mva,omitempty"`
	RX       float64 `json:"rx" yaml:"rx"`
	// X0X1 and R0X0 describe the zero-sequence impedance. Zero X0X1 means the
	// source has no zero-sequence path.
	X0X1 float64 `json:"x0x1,omitempty" yaml:"x0x1,omitempty"`
	R0X0 float64 `json:"r0x0,omitempty" yaml:"r0x0,omitempty"`
}

// Line is an overhead line or cable between two buses.
type Line struct {
	Name       string  `json:"name" yaml:"name"`
	FromBus    int     `json:"from_bus" yaml:"from_bus"`
	ToBus      int     `json:"to_bus" yaml:"to_bus"`
	LengthKM   float64 `json:"length_km" yaml:"length_km"`
	ROhmPerKM  float64 `json:"r_ohm_per_km" yaml:"r_ohm_per_km"`
	XOhmPerKM  float64 `json:"x_ohm_per_km" yaml:"x_ohm_per_km"`
	R0OhmPerKM float64 `json:"r0_ohm_per_km,omitempty" yaml:"r0_ohm_per_km,omitempty"`
	X0OhmPerKM float64 `json:"x0_ohm_per_km,omitempty" yaml:"x0_ohm_per_km,omitempty"`
}

// Transformer is a two-winding transformer.
type Transformer struct {
	Name        string  `json:"name" yaml:"name"`
	HVBus       int     `json:"hv_bus" yaml:"hv_bus"`
	LVBus       int     `json:"lv_bus" yaml:"lv_bus"`
	SnMVA       float64 `json:"sn_mva" yaml:"sn_mva"`
	VnHVKV      float64 `json:"vn_hv_kv" yaml:"vn_hv_kv"`
	VnLVKV      float64 `json:"vn_lv_kv" yaml:"vn_lv_kv"`
	VkPercent   float64 `json:"vk_percent" yaml:"vk_percent"`
	VkrPercent  float64 `json:"vkr_percent" yaml:"vkr_percent"`
	VectorGroup string  `json:"vector_group" yaml:"vector_group"`
}

// Load is a consumer connected to a bus.
type Load struct {
	Name  string  `json:"name" yaml:"name"`
	Bus   int     `json:"bus" yaml:"bus"`
	PMW   float64 `json:"p_mw" yaml:"p_mw"`
	QMVAr float64 `json:"q_mvar" yaml:"q_mvar"`
}

// Model exposes topology and impedance data by bus and element index.
type Model interface {
	Buses() []Bus
	Sources() []Source
	Lines() []Line
	Transformers() []Transformer
	Loads() []Load
}

// BranchKind distinguishes series elements.
type BranchKind string

const (
	BranchLine  BranchKind = "line"
	BranchTrafo BranchKind = "trafo"
)

// Branch is a series element reduced to its endpoints.
type Branch struct {
	Kind  BranchKind
	Index int
	A, B  int
}

// Other returns the far end of the branch seen from bus.
func (b Branch) Other(bus int) int {
	if b.A == bus {
		return b.B
	}
	return b.A
}

func (b Branch) String() string { return fmt.Sprintf("%s%d(%d-%d)", b.Kind, b.Index, b.A, b.B) }

// Branches lists lines then transformers of m.
func Branches(m Model) []Branch {
	lines, trafos := m.Lines(), m.Transformers()
	out := make([]Branch, 0, len(lines)+len(trafos))
	for i, l := range lines {
		out = append(out, Branch{Kind: BranchLine, Index: i, A: l.FromBus, B: l.ToBus})
	}
	for i, t := range trafos {
		out = append(out, Branch{Kind: BranchTrafo, Index: i, A: t.HVBus, B: t.LVBus})
	}
	return out
}

// Validate checks that every element references existing buses.
func Validate(m Model) error {
	n := len(m.Buses())
	for i, b := range m.Buses() {
		if b.Index != i {
			return fmt.Errorf("bus %q: index %d does not match position %d", b.Name, b.Index, i)
		}
		if !(b.VnKV > 0) {
			return fmt.Errorf("bus %q: nominal voltage must be positive", b.Name)
		}
	}
	check := func(kind string, i, bus int) error {
		if bus < 0 || bus >= n {
			return fmt.Errorf("%s %d: %w %d", kind, i, ErrUnknownBus, bus)
		}
		return nil
	}
	for i, s := range m.Sources() {
		if err := check("source", i, s.Bus); err != nil {
			return err
		}
	}
	for _, br := range Branches(m) {
		if err := check(string(br.Kind), br.Index, br.A); err != nil {
			return err
		}
		if err := check(string(br.Kind), br.Index, br.B); err != nil {
			return err
		}
		if br.A == br.B {
			return fmt.Errorf("%s %d connects bus %d to itself", br.Kind, br.Index, br.A)
		}
	}
	for i, l := range m.Loads() {
		if err := check("load", i, l.Bus); err != nil {
			return err
		}
	}
	return nil
}
