package shortcircuit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/relaycoord/core/logger"
	"github.com/kilianp07/relaycoord/core/network"
)

// DefaultBaseMVA is the per-unit power base.
const DefaultBaseMVA = 100.0

// Options controls a computation.
type Options struct {
	BaseMVA float64 `json:"base_mva" yaml:"base_mva"`
	Case    Case    `json:"case" yaml:"case"`
}

func (o Options) withDefaults() Options {
	if o.BaseMVA <= 0 {
		o.BaseMVA = DefaultBaseMVA
	}
	if o.Case == "" {
		o.Case = CaseMax
	}
	return o
}

// VoltageFactor returns the IEC 60909 Table 1 factor c for a nominal voltage.
func VoltageFactor(vnKV float64, c Case) float64 {
	hv := vnKV > 1
	switch {
	case c == CaseMin && hv:
		return 1.00
	case c == CaseMin:
		return 0.95
	case hv:
		return 1.10
	default:
		return 1.05
	}
}

// PeakFactor is kappa from the R/X ratio of the driving-point impedance.
func PeakFactor(rx float64) float64 {
	return 1.02 + 0.98*math.Exp(-3*rx)
}

// Engine computes fault duty. It holds no state between calls.
type Engine struct {
	log logger.Logger
}

// NewEngine returns an engine logging to log; nil discards logs.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: logger.OrNop(log)}
}

type seriesY struct {
	a, b int
	y    complex128
}

// seqNet is one sequence network: series admittances between buses and shunt
// admittances to the reference.
type seqNet struct {
	series []seriesY
	shunt  map[int]complex128
}

func newSeqNet() *seqNet { return &seqNet{shunt: make(map[int]complex128)} }

func (s *seqNet) addSeries(a, b int, z complex128) {
	s.series = append(s.series, seriesY{a: a, b: b, y: 1 / z})
}

func (s *seqNet) addShunt(bus int, z complex128) { s.shunt[bus] += 1 / z }

// Compute returns the fault duty of every bus of m.
func (e *Engine) Compute(m network.Model, opts Options) Duty {
	opts = opts.withDefaults()
	buses := m.Buses()
	duty := Duty{Case: opts.Case, BaseMVA: opts.BaseMVA, byBus: make(map[int]BusDuty, len(buses))}
	for _, b := range buses {
		duty.byBus[b.Index] = BusDuty{Bus: b.Index, Name: b.Name, VnKV: b.VnKV, C: VoltageFactor(b.VnKV, opts.Case)}
	}

	pos, zero, err := e.build(m, opts)
	if err != nil {
		e.log.Errorf("short-circuit model rejected: %v", err)
		for b, bd := range duty.byBus {
			bd.Err = &IndeterminateFaultError{Bus: b, Reason: err.Error()}
			duty.byBus[b] = bd
		}
		return duty
	}

	n := len(buses)
	z1, err1 := solve(n, pos, "no source reachable")
	z0, err0 := solve(n, zero, "no zero-sequence path to ground")

	for b, bd := range duty.byBus {
		if err1[b] != nil {
			bd.Err = err1[b]
			e.log.Warnf("bus %d (%s): %v", b, bd.Name, bd.Err)
			duty.byBus[b] = bd
			continue
		}
		ib := opts.BaseMVA / (math.Sqrt(3) * bd.VnKV)
		bd.Z1 = z1[b]
		bd.Ik3KA = bd.C * ib / cmplx.Abs(bd.Z1)
		if imag(bd.Z1) > 0 {
			bd.RX = real(bd.Z1) / imag(bd.Z1)
		} else {
			bd.RX = math.Inf(1)
		}
		bd.IpKA = PeakFactor(bd.RX) * math.Sqrt2 * bd.Ik3KA

		if err0[b] != nil {
			bd.GroundErr = err0[b]
		} else {
			bd.Z0 = z0[b]
			bd.Ik1KA = 3 * bd.C * ib / cmplx.Abs(2*bd.Z1+bd.Z0)
		}
		duty.byBus[b] = bd
	}
	e.log.Debugw("short-circuit computed", map[string]any{
		"case":          string(opts.Case),
		"buses":         n,
		"indeterminate": len(duty.Indeterminate()),
		"max_ka":        duty.MaxKA(),
	})
	return duty
}

func (e *Engine) build(m network.Model, opts Options) (*seqNet, *seqNet, error) {
	if err := network.Validate(m); err != nil {
		return nil, nil, err
	}
	buses := m.Buses()
	sb := opts.BaseMVA
	pos, zero := newSeqNet(), newSeqNet()

	for i, s := range m.Sources() {
		sk := s.SkMaxMVA
		if opts.Case == CaseMin && s.SkMinMVA > 0 {
			sk = s.SkMinMVA
		}
		if !(sk > 0) {
			return nil, nil, fmt.Errorf("source %d (%s): short-circuit power must be positive", i, s.Name)
		}
		c := VoltageFactor(buses[s.Bus].VnKV, opts.Case)
		zq := c * sb / sk
		x := zq / math.Sqrt(1+s.RX*s.RX)
		pos.addShunt(s.Bus, complex(s.RX*x, x))
		if s.X0X1 > 0 {
			x0 := s.X0X1 * x
			zero.addShunt(s.Bus, complex(s.R0X0*x0, x0))
		}
	}

	for i, l := range m.Lines() {
		vn := buses[l.FromBus].VnKV
		zb := vn * vn / sb
		z1 := complex(l.ROhmPerKM*l.LengthKM, l.XOhmPerKM*l.LengthKM) / complex(zb, 0)
		if cmplx.Abs(z1) == 0 {
			return nil, nil, fmt.Errorf("line %d (%s): zero impedance", i, l.Name)
		}
		pos.addSeries(l.FromBus, l.ToBus, z1)
		if l.R0OhmPerKM > 0 || l.X0OhmPerKM > 0 {
			z0 := complex(l.R0OhmPerKM*l.LengthKM, l.X0OhmPerKM*l.LengthKM) / complex(zb, 0)
			zero.addSeries(l.FromBus, l.ToBus, z0)
		}
	}

	for i, t := range m.Transformers() {
		z, err := trafoImpedance(t, buses[t.HVBus].VnKV, buses[t.LVBus].VnKV, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("transformer %d (%s): %w", i, t.Name, err)
		}
		pos.addSeries(t.HVBus, t.LVBus, z)
		switch vectorGroupKind(t.VectorGroup) {
		case "ynyn":
			zero.addSeries(t.HVBus, t.LVBus, z)
		case "dyn":
			zero.addShunt(t.LVBus, z)
		case "ynd":
			zero.addShunt(t.HVBus, z)
		}
	}
	return pos, zero, nil
}

func trafoImpedance(t network.Transformer, hvBusKV, lvBusKV float64, opts Options) (complex128, error) {
	if !(t.SnMVA > 0) {
		return 0, errors.New("rated power must be positive")
	}
	if !(t.VkPercent > 0) || t.VkrPercent < 0 || t.VkrPercent >= t.VkPercent {
		return 0, fmt.Errorf("need 0 <= vkr%% < vk%%, got vk=%v vkr=%v", t.VkPercent, t.VkrPercent)
	}
	vnHV := t.VnHVKV
	if vnHV <= 0 {
		vnHV = hvBusKV
	}
	corr := (vnHV / hvBusKV) * (vnHV / hvBusKV)
	zk := t.VkPercent / 100 * opts.BaseMVA / t.SnMVA * corr
	rk := t.VkrPercent / 100 * opts.BaseMVA / t.SnMVA * corr
	xk := math.Sqrt(zk*zk - rk*rk)
	z := complex(rk, xk)
	if opts.Case == CaseMax {
		xT := math.Sqrt(t.VkPercent*t.VkPercent-t.VkrPercent*t.VkrPercent) / 100
		kt := 0.95 * VoltageFactor(lvBusKV, CaseMax) / (1 + 0.6*xT)
		z *= complex(kt, 0)
	}
	return z, nil
}

// vectorGroupKind strips the clock number and folds case: "Dyn11" -> "dyn".
func vectorGroupKind(vg string) string {
	return strings.ToLower(strings.TrimRightFunc(strings.TrimSpace(vg), unicode.IsDigit))
}

// solve returns the driving-point impedance of every bus. Buses in a
// component without any shunt get an IndeterminateFaultError with reason.
func solve(n int, net *seqNet, reason string) ([]complex128, []error) {
	z := make([]complex128, n)
	errs := make([]error, n)

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for _, s := range net.series {
		parent[find(s.a)] = find(s.b)
	}
	comps := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		comps[r] = append(comps[r], i)
	}

	for _, nodes := range comps {
		grounded := false
		for _, b := range nodes {
			if net.shunt[b] != 0 {
				grounded = true
				break
			}
		}
		if !grounded {
			for _, b := range nodes {
				errs[b] = &IndeterminateFaultError{Bus: b, Reason: reason}
			}
			continue
		}
		local := make(map[int]int, len(nodes))
		for i, b := range nodes {
			local[b] = i
		}
		k := len(nodes)
		y := mat.NewDense(2*k, 2*k, nil)
		add := func(i, j int, v complex128) {
			g, bb := real(v), imag(v)
			y.Set(i, j, y.At(i, j)+g)
			y.Set(i, k+j, y.At(i, k+j)-bb)
			y.Set(k+i, j, y.At(k+i, j)+bb)
			y.Set(k+i, k+j, y.At(k+i, k+j)+g)
		}
		for _, s := range net.series {
			i, ok := local[s.a]
			if !ok {
				continue
			}
			j := local[s.b]
			add(i, i, s.y)
			add(j, j, s.y)
			add(i, j, -s.y)
			add(j, i, -s.y)
		}
		for b, v := range net.shunt {
			if i, ok := local[b]; ok {
				add(i, i, v)
			}
		}

		var inv mat.Dense
		if err := inv.Inverse(y); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
				for _, b := range nodes {
					errs[b] = &IndeterminateFaultError{Bus: b, Reason: "singular impedance matrix"}
				}
				continue
			}
		}
		for i, b := range nodes {
			zz := complex(inv.At(i, i), inv.At(k+i, i))
			if cmplx.IsNaN(zz) || cmplx.IsInf(zz) || cmplx.Abs(zz) == 0 {
				errs[b] = &IndeterminateFaultError{Bus: b, Reason: "degenerate driving-point impedance"}
				continue
			}
			z[b] = zz
		}
	}
	return z, errs
}
