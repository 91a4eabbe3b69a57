package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/star/stardiff/internal/ephem"
	"github.com/star/stardiff/internal/httputil"
	"github.com/star/stardiff/internal/metrics"
	"github.com/star/stardiff/internal/statediff"
	"github.com/star/stardiff/internal/tle"
)

type handlers struct {
	logger       *slog.Logger
	maxBodyBytes int64
	maxEpochs    int
	pool         *ephem.WorkerPool
	trustProxy   bool
	limiter      *inflightLimiter
}

type compareRequest struct {
	StatesA    [][]float64 `json:"states_a"`
	StatesB    [][]float64 `json:"states_b"`
	Epochs     []float64   `json:"epochs"`
	Mode       string      `json:"mode"`
	TimeFormat string      `json:"time_format"`
}

type tleLines struct {
	Name  string `json:"name"`
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type tleCompareRequest struct {
	TLEA        tleLines `json:"tle_a"`
	TLEB        tleLines `json:"tle_b"`
	Start       string   `json:"start"`
	StepSeconds float64  `json:"step_seconds"`
	Count       int      `json:"count"`
	Frame       string   `json:"frame"`
	Mode        string   `json:"mode"`
	TimeFormat  string   `json:"time_format"`
}

// compareStates handles POST /api/v1/compare with caller-supplied state series.
func (h *handlers) compareStates(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decode(w, r, &req) {
		return
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		h.reject(w, mode, len(req.Epochs), http.StatusBadRequest, err)
		return
	}
	if len(req.Epochs) > h.maxEpochs {
		h.reject(w, mode, len(req.Epochs), http.StatusRequestEntityTooLarge,
			fmt.Errorf("%d epochs exceeds the limit of %d", len(req.Epochs), h.maxEpochs))
		return
	}

	a, err := toStates(req.StatesA)
	if err != nil {
		h.reject(w, mode, len(req.Epochs), http.StatusBadRequest, fmt.Errorf("states_a: %w", err))
		return
	}
	b, err := toStates(req.StatesB)
	if err != nil {
		h.reject(w, mode, len(req.Epochs), http.StatusBadRequest, fmt.Errorf("states_b: %w", err))
		return
	}

	h.render(w, a, b, req.Epochs, statediff.Options{Mode: mode, TimeFormat: req.TimeFormat})
}

// compareTLE handles POST /api/v1/compare/tle: both element sets are
// propagated over the same grid and compared.
func (h *handlers) compareTLE(w http.ResponseWriter, r *http.Request) {
	var req tleCompareRequest
	if !h.decode(w, r, &req) {
		return
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, err)
		return
	}
	if req.Count > h.maxEpochs {
		h.reject(w, mode, req.Count, http.StatusRequestEntityTooLarge,
			fmt.Errorf("count %d exceeds the limit of %d", req.Count, h.maxEpochs))
		return
	}

	frame, err := ephem.ParseFrame(req.Frame)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, err)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, fmt.Errorf("start: %w", err))
		return
	}
	step := time.Duration(req.StepSeconds * float64(time.Second))
	epochs, err := ephem.Grid(start, step, req.Count)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, err)
		return
	}

	pa, err := h.provider(req.TLEA, frame)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, fmt.Errorf("tle_a: %w", err))
		return
	}
	pb, err := h.provider(req.TLEB, frame)
	if err != nil {
		h.reject(w, mode, req.Count, http.StatusBadRequest, fmt.Errorf("tle_b: %w", err))
		return
	}

	a, b, err := ephem.PropagatePair(r.Context(), pa, pb, epochs)
	if err != nil {
		h.logger.Warn("propagation failed", "error", err)
		h.reject(w, mode, req.Count, http.StatusUnprocessableEntity, err)
		return
	}

	h.render(w, a, b, epochs, statediff.Options{Mode: mode, TimeFormat: req.TimeFormat})
}

func (h *handlers) provider(l tleLines, frame ephem.Frame) (*ephem.SGP4Provider, error) {
	entry, err := tle.ParseLines(l.Name, l.Line1, l.Line2)
	if err != nil {
		return nil, err
	}
	return ephem.NewSGP4Provider(entry, frame, h.pool)
}

// render runs the comparison into a buffer so that precondition failures
// still produce a JSON error instead of a truncated report.
func (h *handlers) render(w http.ResponseWriter, a, b []statediff.State, epochs []float64, opts statediff.Options) {
	start := time.Now()
	var buf bytes.Buffer
	res, err := statediff.Compare(&buf, a, b, epochs, opts)
	if err != nil {
		h.reject(w, opts.Mode, len(epochs), http.StatusBadRequest, err)
		return
	}

	outcome := metrics.OutcomeOK
	if res.Degenerate {
		outcome = metrics.OutcomeDegenerateFrame
		h.logger.Warn("view frame undefined", "mode", opts.Mode.String(), "epoch_index", res.DegenerateIndex, "epoch", epochs[res.DegenerateIndex])
	}
	metrics.RecordComparison(opts.Mode.String(), outcome, len(epochs), time.Since(start))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httputil.DecodeJSON(w, r, h.maxBodyBytes, v)
	if err == nil {
		return true
	}
	status := http.StatusBadRequest
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	httputil.WriteError(w, status, err.Error())
	return false
}

func (h *handlers) reject(w http.ResponseWriter, mode statediff.Mode, epochs int, status int, err error) {
	label := mode.String()
	if _, perr := statediff.ParseMode(label); perr != nil {
		label = "unknown"
	}
	metrics.RecordComparison(label, metrics.OutcomeInvalid, epochs, 0)
	h.logger.Debug("comparison rejected", "status", status, "error", err)
	httputil.WriteError(w, status, err.Error())
}

// parseMode defaults an empty mode to basic.
func parseMode(s string) (statediff.Mode, error) {
	if s == "" {
		return statediff.ModeBasic, nil
	}
	m, err := statediff.ParseMode(s)
	if err != nil {
		return -1, err
	}
	return m, nil
}

func toStates(rows [][]float64) ([]statediff.State, error) {
	states := make([]statediff.State, len(rows))
	for i, row := range rows {
		if len(row) != len(statediff.State{}) {
			return nil, fmt.Errorf("state %d has %d components, want 6", i, len(row))
		}
		copy(states[i][:], row)
	}
	return states, nil
}

type modeInfo struct {
	Name       string `json:"name"`
	NeedsFrame bool   `json:"needs_frame"`
}

// modesHandler lists the report modes accepted by the compare endpoints.
func modesHandler(w http.ResponseWriter, r *http.Request) {
	modes := []statediff.Mode{statediff.ModeBasic, statediff.ModeStats, statediff.ModeDump, statediff.ModeDumpViewFrame}
	out := make([]modeInfo, len(modes))
	for i, m := range modes {
		out[i] = modeInfo{Name: m.String(), NeedsFrame: m.NeedsFrame()}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"modes": out})
}
