package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `study:
  min_margin_s: 0.25
  test_currents: [500, 1000]
  fault_types: [ground]
  case: min
  frequency_hz: 50
  export_csv: true
  tcc:
    current_min: 20
    current_max: 20000
store:
  backend: sqlite
metrics:
  sinks:
    - type: nop
  prometheus_addr: ":9100"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
sentry:
  environment: test
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Study.MinMarginS)
	assert.Equal(t, 0.25, *cfg.Study.MinMarginS)
	assert.Equal(t, []float64{500, 1000}, cfg.Study.TestCurrents)
	fts, err := cfg.Study.ParsedFaultTypes()
	require.NoError(t, err)
	assert.Equal(t, []device.FaultType{device.Ground}, fts)
	assert.Equal(t, 50.0, cfg.Study.FrequencyHz)
	assert.True(t, cfg.Study.ExportCSV)
	assert.Equal(t, 20000.0, cfg.Study.TCC.CurrentMax)
	assert.Equal(t, 500, cfg.Study.TCC.Points)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "studies.db", cfg.Store.Path)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusAddr)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "relaycoord/studies", cfg.MQTT.Topic)
	assert.Equal(t, "test", cfg.Sentry.Environment)

	cc := cfg.Study.Coordination()
	assert.Equal(t, shortcircuit.CaseMin, cc.Case)
	assert.Equal(t, 0.25, cc.Margin())
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"study": {"min_margin_s": 0.3}, "store": {"backend": "jsonl", "path": "x.jsonl"}}`)
	t.Setenv("RC_STUDY__MIN_MARGIN_S", "0.4")
	t.Setenv("RC_STORE__MAX_SIZE_MB", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Study.MinMarginS)
	assert.Equal(t, 0.4, *cfg.Study.MinMarginS)
	assert.Equal(t, 5, cfg.Store.MaxSizeMB)
	assert.Equal(t, "x.jsonl", cfg.Store.Path)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Study.MinMarginS)
	assert.Equal(t, 0.3, *cfg.Study.MinMarginS)
	assert.Equal(t, []string{"phase", "ground"}, cfg.Study.FaultTypes)
	assert.Equal(t, "jsonl", cfg.Store.Backend)
	assert.Equal(t, "studies.jsonl", cfg.Store.Path)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.MQTT.Topic)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"fault type": "study:\n  fault_types: [arc]\n",
		"case":       "study:\n  case: typical\n",
		"current":    "study:\n  test_currents: [100, -5]\n",
		"frequency":  "study:\n  frequency_hz: 55\n",
		"tcc range":  "study:\n  tcc:\n    current_min: 100\n    current_max: 50\n",
		"backend":    "store:\n  backend: mongo\n",
		"mqtt":       "mqtt:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestLoadKeepsZeroMinMargin(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "study:\n  min_margin_s: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Study.MinMarginS)
	assert.Equal(t, 0.0, *cfg.Study.MinMarginS)
	assert.Equal(t, 0.0, cfg.Study.Coordination().Margin())

	cfg, err = Load(writeFile(t, "config.yaml", "study:\n  min_margin_s: -0.1\n"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
