package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

// Snapshot size limits in pixels.
const (
	defaultSnapshotWidth  = 800
	defaultSnapshotHeight = 300
	maxSnapshotSide       = 4096
)

// State is the body of GET /state.
type State struct {
	Running              bool                `json:"running"`
	Params               ancsim.Params       `json:"params"`
	DelaySeconds         float64             `json:"delaySeconds"`
	ExpectedSumAmplitude float64             `json:"expectedSumAmplitude"`
	Session              *ancsim.SessionInfo `json:"session,omitempty"`
	Measurement          *analysis.Report    `json:"measurement,omitempty"`
	Spectrum             *analysis.Spectrum  `json:"spectrum,omitempty"`
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// state handles GET /state.
func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	p := s.sim.Params()
	st := State{
		Running:              s.sim.Running(),
		Params:               p,
		DelaySeconds:         p.Delay(),
		ExpectedSumAmplitude: ancsim.ExpectedSumAmplitude(p.Phase, p.Invert),
	}
	if info, ok := s.sim.SessionInfo(); ok {
		st.Session = &info
		if r, err := s.sim.Measure(); err == nil {
			st.Measurement = &r
		}
		if sp, err := s.sim.Spectrum(); err == nil {
			st.Spectrum = &sp
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.log.Debug("encode state", zap.Error(err))
	}
}

// snapshot handles GET /snapshot.png?width=W&height=H.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	width, ok := dimension(r, "width", defaultSnapshotWidth)
	if !ok {
		http.Error(w, `{"error":"invalid width"}`, http.StatusBadRequest)
		return
	}
	height, ok := dimension(r, "height", defaultSnapshotHeight)
	if !ok {
		http.Error(w, `{"error":"invalid height"}`, http.StatusBadRequest)
		return
	}

	taps, running := s.sim.Taps()
	if !running {
		http.Error(w, `{"error":"simulator not running"}`, http.StatusConflict)
		return
	}

	raster := render.NewRaster(width, height)
	render.NewRenderer(raster).Draw(taps)

	w.Header().Set("Content-Type", "image/png")
	if err := raster.EncodePNG(w); err != nil {
		s.log.Debug("encode snapshot", zap.Error(err))
	}
}

func dimension(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxSnapshotSide {
		return 0, false
	}
	return n, true
}
