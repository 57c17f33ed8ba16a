package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
	"github.com/kilianp07/relaycoord/core/results"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
	"github.com/kilianp07/relaycoord/core/tcc"
	"github.com/kilianp07/relaycoord/infra/plot"
	"github.com/kilianp07/relaycoord/pkg/export"
	"github.com/kilianp07/relaycoord/pkg/studyfile"
)

func (s *Service) exportTable(st *studyfile.Study, t *coordination.Table) ([]string, error) {
	c := s.cfg.Study
	prefix := filePrefix(st.Name) + "_" + string(t.FaultType)
	files, err := export.WriteDir(c.OutputDir, prefix, t, export.Formats{CSV: c.ExportCSV, JSON: c.ExportJSON})
	if err != nil {
		return files, err
	}
	if !c.Plot || st.Devices.NumRelays() == 0 {
		return files, nil
	}
	path := filepath.Join(c.OutputDir, prefix+"_tcc.html")
	if err := s.PlotTCC(path, st, t.FaultType, faultCurrents(t.FaultDuty, t.FaultType)); err != nil {
		return files, fmt.Errorf("plot %s: %w", t.FaultType, err)
	}
	return append(files, path), nil
}

// PlotTCC writes the time-current chart of every relay of st for ft.
// faultCurrentsA are drawn as markers.
func (s *Service) PlotTCC(path string, st *studyfile.Study, ft device.FaultType, faultCurrentsA []float64) error {
	c := s.cfg.Study.TCC
	minA, maxA := c.CurrentMin, c.CurrentMax
	if minA <= 0 {
		minA = tcc.DefaultMinA
	}
	if maxA <= minA {
		maxA = tcc.DefaultMaxA
	}
	curves, err := tcc.SampleAll(st.Devices, nil, ft, minA, maxA, c.Points)
	if err != nil {
		return err
	}
	return plot.WriteTCCFile(path, curves, plot.Options{
		Title:          fmt.Sprintf("%s - %s faults", st.Name, ft),
		Width:          c.Width,
		Height:         c.Height,
		Limits:         tcc.AutoLimits(st.Devices.Relays(), ft, minA, maxA),
		FaultCurrentsA: faultCurrentsA,
	})
}

// FaultMarkers returns the bus fault currents of st for ft in amperes, for
// use as chart markers.
func (s *Service) FaultMarkers(st *studyfile.Study, ft device.FaultType) []float64 {
	if st.Grid == nil || len(st.Grid.BusList) == 0 {
		return nil
	}
	duty := shortcircuit.NewEngine(s.log).Compute(st.Grid, shortcircuit.Options{
		BaseMVA: s.cfg.Study.BaseMVA,
		Case:    shortcircuit.Case(s.cfg.Study.Case),
	})
	return faultCurrents(coordination.BusFaults(duty), ft)
}

func faultCurrents(buses []coordination.BusFault, ft device.FaultType) []float64 {
	var out []float64
	for _, b := range buses {
		ka := b.Ik3KA
		if ft == device.Ground {
			ka = b.Ik1KA
		}
		if ka > 0 {
			out = append(out, ka*1000)
		}
	}
	return out
}

// ShortCircuit computes the fault duty of every bus in the study file at
// path, records it on sinks that accept fault duty and exports it as CSV
// when enabled.
func (s *Service) ShortCircuit(ctx context.Context, path string, c shortcircuit.Case) ([]coordination.BusFault, error) {
	st, err := studyfile.Load(path, studyfile.Options{FrequencyHz: s.cfg.Study.FrequencyHz})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c == "" {
		c = shortcircuit.Case(s.cfg.Study.Case)
	}
	duty := shortcircuit.NewEngine(s.log).Compute(st.Grid, shortcircuit.Options{BaseMVA: s.cfg.Study.BaseMVA, Case: c})
	buses := coordination.BusFaults(duty)

	id := s.newID()
	if r, ok := s.sink.(coremetrics.FaultDutyRecorder); ok {
		if err := r.RecordFaultDuty(coremetrics.FaultDutyRecord{StudyID: id, Case: string(c), Buses: buses, Time: s.now()}); err != nil {
			s.log.Warnf("record fault duty %s: %v", id, err)
		}
	}
	if s.cfg.Study.ExportCSV {
		if err := os.MkdirAll(s.cfg.Study.OutputDir, 0o755); err != nil {
			return buses, err
		}
		p := filepath.Join(s.cfg.Study.OutputDir, filePrefix(st.Name)+"_short_circuit_"+string(c)+".csv")
		f, err := os.Create(p)
		if err != nil {
			return buses, err
		}
		if err := export.WriteShortCircuitCSV(f, buses); err != nil {
			_ = f.Close()
			return buses, err
		}
		if err := f.Close(); err != nil {
			return buses, err
		}
	}
	return buses, nil
}

// History lists stored studies matching q.
func (s *Service) History(ctx context.Context, q results.Query) ([]results.Study, error) {
	return s.store.List(ctx, q)
}

// Lookup returns the stored records of one study run.
func (s *Service) Lookup(ctx context.Context, id string) ([]results.Study, error) {
	return s.store.Get(ctx, id)
}

func filePrefix(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if name == "" {
		return "study"
	}
	return name
}

// Store returns the result store backing the service.
func (s *Service) Store() results.Store { return s.store }
