package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/relaycoord/core/results"
)

// Rotation bounds the size of a JSONL store. Zero values keep lumberjack's
// defaults: 100 MB per file and no pruning.
type Rotation struct {
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// JSONLStore stores one study per line in a file rotated by lumberjack.
type JSONLStore struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
}

// NewJSONLStore creates the directory of path and returns a store writing to it.
func NewJSONLStore(path string, rot Rotation) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	return &JSONLStore{writer: lj, path: path}, nil
}

// Append writes the study and triggers rotation if needed.
func (s *JSONLStore) Append(ctx context.Context, st results.Study) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal study %s: %w", st.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(append(b, '\n'))
	return err
}

// List reads the active file and its rotated backups.
func (s *JSONLStore) List(ctx context.Context, q results.Query) ([]results.Study, error) {
	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var res []results.Study
	for _, st := range all {
		if q.Match(st) {
			res = append(res, st)
		}
	}
	return res, nil
}

// Get returns every record stored under the run id.
func (s *JSONLStore) Get(ctx context.Context, id string) ([]results.Study, error) {
	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var res []results.Study
	for _, st := range all {
		if st.ID == id {
			res = append(res, st)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", results.ErrNotFound, id)
	}
	return res, nil
}

// readAll returns records ordered oldest first. Unparsable lines are skipped.
func (s *JSONLStore) readAll(ctx context.Context) ([]results.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var res []results.Study
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readFile(f)
		if err != nil {
			return nil, err
		}
		res = append(res, recs...)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// files lists rotated backups followed by the active file.
func (s *JSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := s.path[:len(s.path)-len(ext)]
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	if _, err := os.Stat(s.path); err == nil {
		backups = append(backups, s.path)
	}
	return backups, nil
}

func readFile(path string) ([]results.Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []results.Study
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		var st results.Study
		if err := json.Unmarshal(sc.Bytes(), &st); err != nil {
			continue
		}
		res = append(res, st)
	}
	return res, sc.Err()
}

// Close closes the underlying writer.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}
