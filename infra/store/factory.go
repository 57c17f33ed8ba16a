// Package store provides results.Store backends: a SQLite database and a
// rotating JSONL file.
package store

import (
	"fmt"

	"github.com/kilianp07/relaycoord/core/factory"
	"github.com/kilianp07/relaycoord/core/results"
)

// Backends builds stores by name.
var Backends = factory.NewRegistry[results.Store]()

type fileConf struct {
	Path string `json:"path"`
	Rotation
}

func init() {
	Backends.MustRegister("nop", func(map[string]any) (results.Store, error) {
		return results.NopStore{}, nil
	})
	Backends.MustRegister("jsonl", func(conf map[string]any) (results.Store, error) {
		var c fileConf
		if err := decodeFileConf(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path, c.Rotation)
	})
	Backends.MustRegister("sqlite", func(conf map[string]any) (results.Store, error) {
		var c fileConf
		if err := decodeFileConf(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

func decodeFileConf(conf map[string]any, c *fileConf) error {
	if err := factory.Decode(conf, c); err != nil {
		return err
	}
	if err := factory.Decode(conf, &c.Rotation); err != nil {
		return err
	}
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}

// Open builds the store named backend.
func Open(backend, path string, rot Rotation) (results.Store, error) {
	return Backends.Create(factory.ModuleConfig{Type: backend, Conf: map[string]any{
		"path":         path,
		"max_size_mb":  rot.MaxSizeMB,
		"max_backups":  rot.MaxBackups,
		"max_age_days": rot.MaxAgeDays,
		"compress":     rot.Compress,
	}})
}
