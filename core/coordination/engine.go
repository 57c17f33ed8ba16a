package coordination

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/logger"
	"github.com/kilianp07/relaycoord/core/network"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
)

// marginTolerance absorbs float rounding when a margin equals the minimum.
const marginTolerance = 1e-9

// Request selects the scenarios of one analysis.
type Request struct {
	FaultType device.FaultType `json:"fault_type"`
	// Currents are explicit through-fault currents in primary amperes. When
	// empty, currents are derived from the short-circuit duty of each bus.
	Currents []float64 `json:"currents,omitempty"`
	// FaultBuses restricts derived scenarios to these buses.
	FaultBuses []int `json:"fault_buses,omitempty"`
}

// Engine runs coordination analyses. It keeps no state between calls and is
// safe for concurrent use.
type Engine struct {
	cfg Config
	sc  *shortcircuit.Engine
	log logger.Logger
}

// NewEngine validates cfg and returns an engine; a nil logger discards logs.
func NewEngine(cfg Config, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("coordination config: %w", err)
	}
	log = logger.OrNop(log)
	return &Engine{cfg: cfg, sc: shortcircuit.NewEngine(log), log: log}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

type scenario struct {
	bus     int
	name    string
	current float64
}

// Analyze evaluates every relay of table for req. m may be nil, in which case
// no ordering, breaker check or derived current is possible.
func (e *Engine) Analyze(m network.Model, table *device.Table, req Request) (*Table, error) {
	start := time.Now()
	ft, err := device.ParseFaultType(string(req.FaultType))
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("device table is nil")
	}
	if err := validateCurrents(req.Currents); err != nil {
		return nil, err
	}

	out := &Table{FaultType: ft, MinMargin: e.cfg.Margin(), Ordering: OrderingUnsupported}
	var (
		duty  *shortcircuit.Duty
		order *Order
	)
	if m != nil {
		d := e.sc.Compute(m, shortcircuit.Options{BaseMVA: e.cfg.BaseMVA, Case: e.cfg.Case})
		duty = &d
		out.FaultDuty = BusFaults(d)
		out.Breakers = CheckBreakers(table.CBs(), d, ft)

		topo, err := network.BuildTopology(m)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("ordering unsupported: %v", err))
		} else {
			var w []string
			order, w = Place(topo, m, table)
			out.Ordering = OrderingRadial
			out.Warnings = append(out.Warnings, w...)
		}
	} else {
		out.Warnings = append(out.Warnings, "no network model: ordering and breaker duty not checked")
	}

	for _, sc := range e.scenarios(req, ft, duty, out) {
		e.runScenario(out, table, order, ft, sc)
	}

	observeTable(out)
	analysisDuration.WithLabelValues(string(ft)).Observe(time.Since(start).Seconds())
	s := out.Summarize()
	e.log.Infof("%s analysis: %d rows, %d pairs (%d selective, %d failures, %d undefined), %d breakers overduty",
		ft, s.Rows, len(out.Pairs), s.Selective, s.Failures, s.Undefined, s.Overduty)
	for _, w := range out.Warnings {
		e.log.Warnf("%s analysis: %s", ft, w)
	}
	return out, nil
}

func (e *Engine) scenarios(req Request, ft device.FaultType, duty *shortcircuit.Duty, out *Table) []scenario {
	var list []scenario
	switch {
	case len(req.Currents) > 0:
		for _, c := range req.Currents {
			list = append(list, scenario{bus: NoFaultBus, current: c})
		}
	case duty == nil:
		out.Warnings = append(out.Warnings, "no currents given and no network: using default test currents")
		for _, c := range e.cfg.DefaultCurrents {
			list = append(list, scenario{bus: NoFaultBus, current: c})
		}
	default:
		buses := duty.Buses()
		if len(req.FaultBuses) > 0 {
			buses = req.FaultBuses
		}
		for _, b := range buses {
			bd, ok := duty.Bus(b)
			if !ok {
				out.Warnings = append(out.Warnings, fmt.Sprintf("fault bus %d: %v", b, network.ErrUnknownBus))
				continue
			}
			i, err := duty.Current(b, ft)
			if err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("fault bus %d (%s) skipped: %v", b, bd.Name, err))
				continue
			}
			list = append(list, scenario{bus: b, name: bd.Name, current: i})
		}
	}
	return list
}

func (e *Engine) runScenario(out *Table, table *device.Table, order *Order, ft device.FaultType, sc scenario) {
	rowAt := make(map[int]int)
	for i, r := range table.Relays() {
		if sc.bus != NoFaultBus && order != nil && !order.Covers(i, sc.bus) {
			continue
		}
		row := relayRow(r, table.CT(r.CT), table.CB(r.CB), ft, sc)
		rowAt[i] = len(out.Rows)
		out.Rows = append(out.Rows, row)
	}
	if order == nil {
		return
	}
	for i := range table.NumRelays() {
		di, ok := rowAt[i]
		if !ok {
			continue
		}
		up, ok := order.Backup(i)
		if !ok {
			continue
		}
		ui, ok := rowAt[up]
		if !ok {
			continue
		}
		down, upRow := out.Rows[di], out.Rows[ui]
		p := judge(down, upRow, e.cfg.Margin())
		p.FaultType, p.FaultBus, p.CurrentA = ft, sc.bus, sc.current
		out.Pairs = append(out.Pairs, p)

		row := &out.Rows[di]
		row.BackupRelay = upRow.Relay
		row.Margin = p.Margin
		row.Verdict = p.Verdict
	}
}

// relayRow evaluates one relay for one scenario. An evaluation error is kept
// on the row and no partial result is filled in.
func relayRow(r device.Relay, ct device.CT, cb device.CircuitBreaker, ft device.FaultType, sc scenario) Row {
	row := Row{
		FaultType:    ft,
		FaultBus:     sc.bus,
		FaultBusName: sc.name,
		CurrentA:     sc.current,
		Relay:        r.Label(),
		CT:           ct.Label(),
		CB:           cb.Label(),
		Bus:          ct.Bus,
	}
	trip, err := EvaluateRelay(r, ct, cb, ft, sc.current)
	if err != nil {
		row.RelayCurrentA = ct.SecondaryCurrent(sc.current)
		row.Error = err.Error()
		return row
	}
	row.RelayCurrentA = trip.RelayCurrentA
	row.Multiple = trip.Multiple
	row.Element = trip.Element
	row.Operates = trip.Operation.Operates
	row.Boundary = trip.Operation.Boundary
	row.TripTime = trip.Operation.Seconds
	row.TotalTime = trip.TotalSeconds
	row.CTSaturated = trip.Saturated
	return row
}

// judge compares a downstream row with its backup.
func judge(down, up Row, minMargin float64) Pair {
	p := Pair{
		Downstream:      down.Relay,
		Upstream:        up.Relay,
		Verdict:         Undefined,
		DownstreamError: down.Error,
		UpstreamError:   up.Error,
	}
	if down.Numeric() {
		t := down.TripTime
		p.DownstreamTime = &t
	}
	if up.Numeric() {
		t := up.TripTime
		p.UpstreamTime = &t
	}
	if p.DownstreamTime == nil || p.UpstreamTime == nil {
		return p
	}
	m := *p.UpstreamTime - *p.DownstreamTime
	p.Margin = &m
	if m >= minMargin-marginTolerance {
		p.Verdict = Selective
	} else {
		p.Verdict = Failure
	}
	return p
}

// BusFaults flattens a duty map into report rows ordered by bus.
func BusFaults(d shortcircuit.Duty) []BusFault {
	all := d.All()
	out := make([]BusFault, len(all))
	for i, bd := range all {
		f := BusFault{Bus: bd.Bus, Name: bd.Name, VnKV: bd.VnKV, Status: BusOK}
		switch {
		case bd.Err != nil:
			f.Status = BusIndeterminate
			f.Reason = bd.Err.Error()
		default:
			f.Ik3KA, f.IpKA, f.RX = bd.Ik3KA, bd.IpKA, bd.RX
			if math.IsInf(f.RX, 0) {
				f.RX = 0
			}
			if bd.GroundErr != nil {
				f.Status = BusGroundIndeterminate
				f.Reason = bd.GroundErr.Error()
			} else {
				f.Ik1KA = bd.Ik1KA
			}
		}
		out[i] = f
	}
	return out
}
