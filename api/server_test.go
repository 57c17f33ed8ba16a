package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/results"
)

func TestNewMux(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "relaycoord_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	srv := httptest.NewServer(NewMux(results.NopStore{}, "", reg))
	defer srv.Close()

	for path, want := range map[string]int{
		"/healthz":           http.StatusOK,
		"/metrics":           http.StatusOK,
		"/api/studies":       http.StatusOK,
		"/api/studies/run-1": http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
