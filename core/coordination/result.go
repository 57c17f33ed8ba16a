package coordination

import (
	"github.com/kilianp07/relaycoord/core/device"
)

// Verdict is the outcome of comparing a relay with its backup.
type Verdict string

const (
	Selective Verdict = "selective"
	Failure   Verdict = "coordination_failure"
	// Undefined is used unless both relays produced a numeric trip time.
	Undefined Verdict = "undefined"
)

// Ordering tells whether upstream/downstream relations could be inferred.
type Ordering string

const (
	OrderingRadial      Ordering = "radial"
	OrderingUnsupported Ordering = "unsupported"
)

// BreakerStatus summarises a breaker duty check.
type BreakerStatus string

const (
	BreakerOK             BreakerStatus = "ok"
	BreakerOverduty       BreakerStatus = "overduty"
	BreakerMakingOverduty BreakerStatus = "making_overduty"
	BreakerIndeterminate  BreakerStatus = "indeterminate"
)

// NoFaultBus marks rows evaluated at an explicit through-fault current.
const NoFaultBus = -1

// Row is one relay evaluated at one fault current.
type Row struct {
	FaultType    device.FaultType `json:"fault_type"`
	FaultBus     int              `json:"fault_bus"`
	FaultBusName string           `json:"fault_bus_name,omitempty"`
	CurrentA     float64          `json:"current_a"`

	Relay string `json:"relay"`
	CT    string `json:"ct"`
	CB    string `json:"cb"`
	Bus   int    `json:"bus"`

	RelayCurrentA float64 `json:"relay_current_a"`
	Multiple      float64 `json:"multiple"`
	Element       string  `json:"element,omitempty"`

	Operates  bool    `json:"operates"`
	Boundary  bool    `json:"boundary,omitempty"`
	TripTime  float64 `json:"trip_time_s"`
	TotalTime float64 `json:"total_time_s"`

	BackupRelay string   `json:"backup_relay,omitempty"`
	Margin      *float64 `json:"margin_s,omitempty"`
	Verdict     Verdict  `json:"verdict,omitempty"`

	CTSaturated bool   `json:"ct_saturated"`
	Error       string `json:"error,omitempty"`
}

// Numeric reports whether the row carries a trip time.
func (r Row) Numeric() bool { return r.Operates && r.Error == "" }

// Pair is the verdict for a relay and its backup at one current.
type Pair struct {
	FaultType       device.FaultType `json:"fault_type"`
	FaultBus        int              `json:"fault_bus"`
	CurrentA        float64          `json:"current_a"`
	Downstream      string           `json:"downstream"`
	Upstream        string           `json:"upstream"`
	DownstreamTime  *float64         `json:"downstream_time_s,omitempty"`
	UpstreamTime    *float64         `json:"upstream_time_s,omitempty"`
	Margin          *float64         `json:"margin_s,omitempty"`
	Verdict         Verdict          `json:"verdict"`
	// DownstreamError and UpstreamError carry the evaluation error of the
	// matching row. The time is nil in that case.
	DownstreamError string           `json:"downstream_error,omitempty"`
	UpstreamError   string           `json:"upstream_error,omitempty"`
}

// BreakerCheck compares a breaker's ratings with the duty at its bus.
type BreakerCheck struct {
	CB             string        `json:"cb"`
	Bus            int           `json:"bus"`
	BusName        string        `json:"bus_name,omitempty"`
	FaultKA        float64       `json:"fault_ka"`
	RatingKA       float64       `json:"rating_ka"`
	PeakKA         float64       `json:"peak_ka"`
	MakingKA       float64       `json:"making_ka"`
	Overduty       bool          `json:"overduty"`
	MakingOverduty bool          `json:"making_overduty"`
	Status         BreakerStatus `json:"status"`
	Reason         string        `json:"reason,omitempty"`
}

// BusFault status values.
const (
	BusOK                  = "ok"
	BusIndeterminate       = "indeterminate"
	BusGroundIndeterminate = "ground_indeterminate"
)

// BusFault is the exported view of the short-circuit duty at one bus.
type BusFault struct {
	Bus    int     `json:"bus"`
	Name   string  `json:"name"`
	VnKV   float64 `json:"vn_kv"`
	Ik3KA  float64 `json:"ikss_ka"`
	Ik1KA  float64 `json:"ik1_ka"`
	IpKA   float64 `json:"ip_ka"`
	RX     float64 `json:"rx"`
	Status string  `json:"status"`
	Reason string  `json:"reason,omitempty"`
}

// Table is the result of one analysis.
type Table struct {
	FaultType device.FaultType `json:"fault_type"`
	Ordering  Ordering         `json:"ordering"`
	MinMargin float64          `json:"min_margin_s"`
	Rows      []Row            `json:"rows"`
	Pairs     []Pair           `json:"pairs"`
	Breakers  []BreakerCheck   `json:"breakers"`
	FaultDuty []BusFault       `json:"fault_duty,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// Failures returns the pairs that are not selective.
func (t *Table) Failures() []Pair {
	var out []Pair
	for _, p := range t.Pairs {
		if p.Verdict == Failure {
			out = append(out, p)
		}
	}
	return out
}

// Overduty returns the breakers whose interrupting or making rating is exceeded.
func (t *Table) Overduty() []BreakerCheck {
	var out []BreakerCheck
	for _, b := range t.Breakers {
		if b.Overduty || b.MakingOverduty {
			out = append(out, b)
		}
	}
	return out
}

// Summary counts verdicts and violations.
type Summary struct {
	Rows          int `json:"rows"`
	Errors        int `json:"errors"`
	NoTrip        int `json:"no_trip"`
	Selective     int `json:"selective"`
	Failures      int `json:"failures"`
	Undefined     int `json:"undefined"`
	Overduty      int `json:"overduty"`
	Indeterminate int `json:"indeterminate"`
}

// Summarize counts the outcomes in t.
func (t *Table) Summarize() Summary {
	s := Summary{Rows: len(t.Rows)}
	for _, r := range t.Rows {
		switch {
		case r.Error != "":
			s.Errors++
		case !r.Operates:
			s.NoTrip++
		}
	}
	for _, p := range t.Pairs {
		switch p.Verdict {
		case Selective:
			s.Selective++
		case Failure:
			s.Failures++
		default:
			s.Undefined++
		}
	}
	for _, b := range t.Breakers {
		switch {
		case b.Status == BreakerIndeterminate:
			s.Indeterminate++
		case b.Overduty || b.MakingOverduty:
			s.Overduty++
		}
	}
	return s
}
