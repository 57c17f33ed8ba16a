package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kilianp07/relaycoord/core/coordination"
)

// Formats selects the files written by WriteDir.
type Formats struct {
	CSV  bool
	JSON bool
}

// WriteDir writes the table under dir with file names prefixed by prefix and
// returns the paths written. CSV output produces coordination, pairs and
// breakers files, plus a short circuit file when fault duty is present.
func WriteDir(dir, prefix string, t *coordination.Table, f Formats) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	type job struct {
		name  string
		write func(io.Writer) error
	}
	var jobs []job
	if f.CSV {
		jobs = append(jobs,
			job{"coordination.csv", func(w io.Writer) error { return WriteCoordinationCSV(w, t.Rows) }},
			job{"pairs.csv", func(w io.Writer) error { return WritePairsCSV(w, t.Pairs) }},
			job{"breakers.csv", func(w io.Writer) error { return WriteBreakersCSV(w, t.Breakers) }},
		)
		if len(t.FaultDuty) > 0 {
			jobs = append(jobs, job{"short_circuit.csv", func(w io.Writer) error { return WriteShortCircuitCSV(w, t.FaultDuty) }})
		}
	}
	if f.JSON {
		jobs = append(jobs, job{"table.json", func(w io.Writer) error { return WriteJSON(w, t) }})
	}
	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		var buf bytes.Buffer
		if err := j.write(&buf); err != nil {
			return paths, fmt.Errorf("export %s: %w", j.name, err)
		}
		p := filepath.Join(dir, prefix+"_"+j.name)
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
