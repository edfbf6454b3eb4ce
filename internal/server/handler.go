package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"audioconvert/internal/converter"
	"audioconvert/internal/locator"
	"audioconvert/internal/monitor"
	"audioconvert/internal/probe"
	"audioconvert/pkg/models"
)

// Pipeline is the conversion entry point the handler drives. Satisfied by
// *converter.Service; faked in tests.
type Pipeline interface {
	Process(ctx context.Context, rawURL string) (*converter.Result, error)
}

// maxTraceHeaders bounds how many trace lines are attached as headers on a
// success response; the full list still travels in error JSON bodies.
const maxTraceHeaders = 16

// Handler is the HTTP adapter around the conversion pipeline. It owns
// request parsing, the bearer-token check, and response formatting; all
// conversion behavior lives behind Pipeline.
type Handler struct {
	Log      *logrus.Logger
	Secret   string
	Pipeline Pipeline
	Metrics  *Metrics

	// Healthz dependencies.
	Locator      *locator.Locator
	ProbeTimeout time.Duration
}

// Convert handles POST /convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Authentication runs before any resource use.
	if h.Secret != "" {
		if r.Header.Get("Authorization") != "Bearer "+h.Secret {
			h.writeError(w, start, nil,
				models.NewError(models.CodeAuthenticationFailed, "missing or invalid bearer token"))
			return
		}
	}

	var req models.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, start, nil,
			models.NewError(models.CodeNoURLProvided, "request body must be JSON with a url field"))
		return
	}
	if req.URL == "" {
		h.writeError(w, start, nil,
			models.NewError(models.CodeNoURLProvided, "url is required"))
		return
	}

	res, err := h.Pipeline.Process(r.Context(), req.URL)
	defer res.Cleanup(h.Log)
	if err != nil {
		h.writeError(w, start, res, err)
		return
	}

	payload, readErr := os.ReadFile(res.Outcome.OutputPath)
	if readErr != nil || len(payload) == 0 {
		h.writeError(w, start, res,
			models.WrapError(models.CodeInternal, readErr, "reading conversion output"))
		return
	}

	h.observe("success", start, res.Outcome.Attempted, res.Outcome.Strategy)

	contentType, ext := DetectAudioType(payload)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="converted-%d.%s"`, start.Unix(), ext))
	w.Header().Set("X-Processing-Time-Ms",
		fmt.Sprintf("%d", time.Since(start).Milliseconds()))
	w.Header().Set("X-Conversion-Strategy", res.Outcome.Strategy)
	for i, line := range res.Trace.Lines() {
		if i >= maxTraceHeaders {
			break
		}
		w.Header().Add("X-Conversion-Trace", line)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Healthz reports binary resolution, encoder availability, and a system
// snapshot. Missing binaries degrade the status but the endpoint itself
// always answers 200.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status: "ok",
		System: monitor.Snapshot(r.Context()),
	}

	bins, err := h.Locator.Resolve(nil)
	if err != nil {
		resp.Status = "degraded"
		resp.BinaryError = err.Error()
	} else {
		resp.FFmpegPath = bins.FFmpeg
		resp.FFprobePath = bins.FFprobe
		caps := probe.DetectEncoders(r.Context(), bins.FFmpeg, h.ProbeTimeout, nil)
		resp.Encoders = caps.List()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) writeError(w http.ResponseWriter, start time.Time, res *converter.Result, err error) {
	var cerr *models.ConvertError
	if !errors.As(err, &cerr) {
		cerr = models.WrapError(models.CodeInternal, err, "conversion failed")
	}

	h.observe(string(cerr.Code), start, cerr.Attempted, "")
	h.Log.WithError(err).WithField("code", cerr.Code).Warn("request failed")

	body := models.ErrorResponse{
		Error:            cerr.Message,
		Code:             cerr.Code,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Attempted:        cerr.Attempted,
	}
	if res != nil && res.Trace != nil {
		body.Trace = res.Trace.Lines()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(cerr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) observe(code string, start time.Time, attempted []string, winner string) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.Requests.WithLabelValues(code).Inc()
	h.Metrics.Duration.Observe(time.Since(start).Seconds())
	for _, name := range attempted {
		h.Metrics.StrategyAttempt.WithLabelValues(name).Inc()
	}
	if winner != "" {
		h.Metrics.StrategySuccess.WithLabelValues(winner).Inc()
	}
}
