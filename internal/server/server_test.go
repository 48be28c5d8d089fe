package server

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
)

func newTestServer(t *testing.T) (*ancsim.Simulator, *httptest.Server) {
	t.Helper()
	cfg := ancsim.DefaultConfig()
	cfg.Output = device.KindNone
	sim, err := ancsim.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })

	srv := httptest.NewServer(New(sim, sim.Metrics().Registry, zaptest.NewLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return sim, srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)
	resp := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestState_Stopped(t *testing.T) {
	_, srv := newTestServer(t)
	resp := get(t, srv.URL+"/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.False(t, st.Running)
	assert.Equal(t, ancsim.DefaultFrequency, st.Params.Frequency)
	assert.InDelta(t, (110.0/360)/440, st.DelaySeconds, 1e-12)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Measurement)
	assert.Nil(t, st.Spectrum)
}

func TestState_Running(t *testing.T) {
	sim, srv := newTestServer(t)
	_, err := sim.SetPhase(180)
	require.NoError(t, err)
	require.NoError(t, sim.Start(context.Background()))
	sim.Engine().Render(make([]float32, 8192))

	resp := get(t, srv.URL+"/state")
	var st State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Running)
	require.NotNil(t, st.Session)
	require.NotNil(t, st.Measurement)
	assert.InDelta(t, 0, st.ExpectedSumAmplitude, 1e-12)
	assert.Less(t, st.Measurement.CancellationDB, -40.0)
	require.NotNil(t, st.Spectrum)
	assert.Less(t, st.Spectrum.PeakDB, -40.0)
}

func TestSnapshot(t *testing.T) {
	sim, srv := newTestServer(t)

	resp := get(t, srv.URL+"/snapshot.png")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "no snapshot while stopped")

	require.NoError(t, sim.Start(context.Background()))
	sim.Engine().Render(make([]float32, 4096))

	resp = get(t, srv.URL+"/snapshot.png?width=120&height=40")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	for _, q := range []string{"width=0", "width=abc", "height=99999"} {
		resp = get(t, srv.URL+"/snapshot.png?"+q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestMetrics(t *testing.T) {
	sim, srv := newTestServer(t)
	require.NoError(t, sim.Start(context.Background()))

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ancsim_sessions_started_total 1")
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	cfg := ancsim.DefaultConfig()
	cfg.Output = device.KindNone
	sim, err := ancsim.New(cfg)
	require.NoError(t, err)
	defer sim.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- New(sim, nil, nil).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	require.NoError(t, <-errc)
}
