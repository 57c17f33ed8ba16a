// Package export writes analysis results as CSV or JSON. The CSV column sets
// are stable; new columns are only ever appended.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/curves"
)

// SchemaVersion identifies the CSV column sets below.
const SchemaVersion = 2

var (
	CoordinationHeader = []string{"fault_type", "fault_bus", "current_a", "relay", "ct", "cb", "bus",
		"relay_current_a", "multiple", "element", "trip_time_s", "total_time_s", "backup_relay",
		"margin_s", "verdict", "ct_saturated", "error"}
	PairHeader = []string{"fault_type", "fault_bus", "current_a", "downstream", "upstream",
		"downstream_time_s", "upstream_time_s", "margin_s", "verdict", "downstream_error", "upstream_error"}
	BreakerHeader      = []string{"cb", "bus", "fault_ka", "rating_ka", "peak_ka", "making_ka", "status"}
	ShortCircuitHeader = []string{"bus", "name", "vn_kv", "ikss_ka", "ik1_ka", "ip_ka", "rx", "status"}
)

// WriteJSON writes the whole table to w as indented JSON.
func WriteJSON(w io.Writer, t *coordination.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteCoordinationCSV writes one line per relay row. Non-operating rows carry
// NO_TRIP in both time columns.
func WriteCoordinationCSV(w io.Writer, rows []coordination.Row) error {
	return writeCSV(w, CoordinationHeader, len(rows), func(i int) []string {
		r := rows[i]
		trip, total := "", ""
		if r.Error == "" {
			trip, total = curves.NoTripMarker, curves.NoTripMarker
			if r.Operates {
				trip, total = ftoa(r.TripTime), ftoa(r.TotalTime)
			}
		}
		return []string{
			string(r.FaultType),
			bus(r.FaultBus),
			ftoa(r.CurrentA),
			r.Relay,
			r.CT,
			r.CB,
			strconv.Itoa(r.Bus),
			ftoa(r.RelayCurrentA),
			ftoa(r.Multiple),
			r.Element,
			trip,
			total,
			r.BackupRelay,
			optional(r.Margin),
			string(r.Verdict),
			strconv.FormatBool(r.CTSaturated),
			r.Error,
		}
	})
}

// WritePairsCSV writes one line per relay/backup pair. A relay whose
// evaluation failed has an empty time cell and its error in the trailing
// columns.
func WritePairsCSV(w io.Writer, pairs []coordination.Pair) error {
	return writeCSV(w, PairHeader, len(pairs), func(i int) []string {
		p := pairs[i]
		return []string{
			string(p.FaultType),
			bus(p.FaultBus),
			ftoa(p.CurrentA),
			p.Downstream,
			p.Upstream,
			pairTime(p.DownstreamTime, p.DownstreamError),
			pairTime(p.UpstreamTime, p.UpstreamError),
			optional(p.Margin),
			string(p.Verdict),
			p.DownstreamError,
			p.UpstreamError,
		}
	})
}

// WriteBreakersCSV writes the breaker duty checks. Duty cells are empty when
// the bus duty is indeterminate.
func WriteBreakersCSV(w io.Writer, checks []coordination.BreakerCheck) error {
	return writeCSV(w, BreakerHeader, len(checks), func(i int) []string {
		b := checks[i]
		fault, peak := ftoa(b.FaultKA), ftoa(b.PeakKA)
		if b.Status == coordination.BreakerIndeterminate {
			fault, peak = "", ""
		}
		return []string{
			b.CB,
			strconv.Itoa(b.Bus),
			fault,
			ftoa(b.RatingKA),
			peak,
			ftoa(b.MakingKA),
			string(b.Status),
		}
	})
}

// WriteShortCircuitCSV writes the per-bus fault duty. Currents that could not
// be determined are left empty.
func WriteShortCircuitCSV(w io.Writer, buses []coordination.BusFault) error {
	return writeCSV(w, ShortCircuitHeader, len(buses), func(i int) []string {
		b := buses[i]
		ik3, ik1, ip, rx := ftoa(b.Ik3KA), ftoa(b.Ik1KA), ftoa(b.IpKA), ftoa(b.RX)
		switch b.Status {
		case coordination.BusIndeterminate:
			ik3, ik1, ip, rx = "", "", "", ""
		case coordination.BusGroundIndeterminate:
			ik1 = ""
		}
		return []string{
			strconv.Itoa(b.Bus),
			b.Name,
			ftoa(b.VnKV),
			ik3,
			ik1,
			ip,
			rx,
			b.Status,
		}
	})
}

func writeCSV(w io.Writer, header []string, n int, rec func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(rec(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func bus(i int) string {
	if i == coordination.NoFaultBus {
		return ""
	}
	return strconv.Itoa(i)
}

func optional(f *float64) string {
	if f == nil {
		return ""
	}
	return ftoa(*f)
}

func pairTime(f *float64, evalErr string) string {
	switch {
	case evalErr != "":
		return ""
	case f == nil:
		return curves.NoTripMarker
	}
	return ftoa(*f)
}
