package converter

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"audioconvert/internal/budget"
	"audioconvert/internal/download"
	"audioconvert/internal/locator"
	"audioconvert/internal/probe"
	"audioconvert/internal/trace"
	"audioconvert/pkg/models"
)

// Service runs the full conversion pipeline for one invocation:
// locate → download → probe → plan → fallback-convert. Phases execute
// strictly in sequence; no phase begins before the previous outcome is known.
type Service struct {
	Log     *logrus.Logger
	HTTP    *http.Client
	Runner  Runner
	Locator *locator.Locator

	TempDir     string
	DownloadCap int64

	TotalBudget  time.Duration
	SafetyMargin time.Duration
	MinDownload  time.Duration
	ProbeTimeout time.Duration
	AttemptCap   time.Duration
	MinAttempt   time.Duration

	Strategies []Strategy
}

// Result carries the invocation outcome plus everything the HTTP adapter
// needs: the diagnostic trace, elapsed time, and the scratch directory to
// remove once the response has been written. Result is returned on failure
// paths too (with a nil Outcome) so the trace survives.
type Result struct {
	Outcome    *Outcome
	Trace      *trace.Recorder
	ScratchDir string
	Elapsed    time.Duration
}

// Cleanup deletes the invocation's scratch files. It runs on every exit
// path; deletion errors are logged and swallowed so a conversion result is
// never overridden by a cleanup failure.
func (r *Result) Cleanup(log logrus.FieldLogger) {
	if r == nil || r.ScratchDir == "" {
		return
	}
	if err := os.RemoveAll(r.ScratchDir); err != nil {
		log.WithError(err).WithField("dir", r.ScratchDir).Warn("scratch cleanup failed")
	}
}

// Process executes one invocation. The returned Result is always non-nil.
func (s *Service) Process(ctx context.Context, rawURL string) (*Result, error) {
	tr := trace.NewRecorder()
	bud := budget.NewTracker(s.TotalBudget, s.SafetyMargin)
	res := &Result{Trace: tr}
	defer func() { res.Elapsed = bud.Elapsed() }()

	log := s.Log.WithField("invocation", uuid.NewString()[:8])

	// 1. Resolve binaries. Terminal on failure; no download is attempted.
	bins, err := s.Locator.Resolve(tr)
	if err != nil {
		return res, err
	}

	// 2. Scratch area, uniquely named so overlapping invocations in the
	// same filesystem namespace cannot collide.
	scratch := filepath.Join(s.TempDir, "convert-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return res, models.WrapError(models.CodeInternal, err, "creating scratch dir")
	}
	res.ScratchDir = scratch
	inputPath := filepath.Join(scratch, "input.m4a")

	// 3. Download under a budget-derived window.
	window, err := bud.PhaseWindow(s.MinDownload)
	if err != nil {
		return res, err
	}
	size, err := download.Fetch(ctx, s.HTTP, rawURL, inputPath,
		download.Options{MaxBytes: s.DownloadCap, Timeout: window}, tr)
	if err != nil {
		return res, err
	}
	log.WithField("bytes", size).Info("source downloaded")

	// 4. Probes, best-effort. Skipped entirely when the budget window is
	// already too small for them; a skipped or failed probe degrades
	// strategy selection but never aborts.
	var profile *probe.InputProfile
	var caps probe.EncoderCapabilities
	if _, berr := bud.PhaseWindow(s.ProbeTimeout); berr == nil {
		profile, _ = probe.InspectFile(ctx, bins.FFprobe, inputPath, s.ProbeTimeout, tr)
		caps = probe.DetectEncoders(ctx, bins.FFmpeg, s.ProbeTimeout, tr)
	} else {
		tr.Addf("skipping probes: budget too tight")
	}

	// 5. Plan once, then run the fallback chain.
	strategies := s.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	plan := Plan(strategies, caps, profile)
	tr.Addf("plan: %s", strategyNames(plan))

	engine := &Engine{
		Runner:     s.Runner,
		FFmpeg:     bins.FFmpeg,
		Budget:     bud,
		Trace:      tr,
		Log:        log,
		AttemptCap: s.AttemptCap,
		MinAttempt: s.MinAttempt,
	}
	outcome, err := engine.Convert(ctx, inputPath, filepath.Join(scratch, "output"), plan)
	if err != nil {
		return res, err
	}

	log.WithFields(logrus.Fields{
		"strategy": outcome.Strategy,
		"bytes":    outcome.SizeBytes,
		"elapsed":  bud.Elapsed().String(),
	}).Info("conversion succeeded")
	res.Outcome = outcome
	return res, nil
}

func strategyNames(plan []Strategy) string {
	names := make([]string, len(plan))
	for i, s := range plan {
		names[i] = s.Name
	}
	return strings.Join(names, ",")
}
