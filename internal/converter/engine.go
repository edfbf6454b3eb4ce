// Package converter holds the strategy fallback engine: an ordered list of
// transcoding attempts executed one at a time against the ffmpeg subprocess,
// advancing on any per-attempt failure until one succeeds or the list or the
// deadline budget is exhausted.
package converter

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"audioconvert/internal/budget"
	"audioconvert/internal/trace"
	"audioconvert/pkg/models"
)

// Outcome is a successful conversion result.
type Outcome struct {
	OutputPath string
	Ext        string
	Strategy   string
	SizeBytes  int64

	// Attempted lists every strategy name tried, in order, including the
	// one that succeeded.
	Attempted []string
}

// Engine executes the fallback chain. Strategies run strictly sequentially;
// trying two in parallel is deliberately avoided to keep CPU, memory, and
// scratch disk bounded under the serverless allocation.
type Engine struct {
	Runner Runner
	FFmpeg string
	Budget *budget.Tracker
	Trace  *trace.Recorder
	Log    logrus.FieldLogger

	// AttemptCap bounds a single attempt even when plenty of budget
	// remains; MinAttempt is the smallest window worth launching ffmpeg in.
	AttemptCap time.Duration
	MinAttempt time.Duration
}

// Convert walks the planned strategy list. Success requires both a zero exit
// status and a non-empty output file; a zero-byte output advances the chain
// exactly like a non-zero exit. Each attempt's sub-timeout is the smaller of
// the remaining budget window and AttemptCap, and expiry kills the
// subprocess immediately. Failed attempts may leave partial files behind;
// invocation-level cleanup removes the whole scratch directory.
func (e *Engine) Convert(ctx context.Context, input, outBase string, plan []Strategy) (*Outcome, error) {
	if len(plan) == 0 {
		return nil, models.NewError(models.CodeAllStrategiesFailed,
			"no viable strategies for this ffmpeg build")
	}

	attempted := make([]string, 0, len(plan))
	for _, s := range plan {
		window, err := e.Budget.PhaseWindow(e.MinAttempt)
		if err != nil {
			cerr := err.(*models.ConvertError)
			cerr.Attempted = attempted
			e.Trace.Addf("stopping before %s: %s", s.Name, cerr.Message)
			return nil, cerr
		}
		timeout := window
		if timeout > e.AttemptCap {
			timeout = e.AttemptCap
		}

		// The attempt is recorded before launch so spawn failures still
		// appear in the diagnostic list.
		attempted = append(attempted, s.Name)
		output := outBase + "." + s.Ext

		e.Trace.Addf("attempt %s (timeout %dms)", s.Name, timeout.Milliseconds())
		e.Log.WithFields(logrus.Fields{
			"strategy": s.Name,
			"timeout":  timeout.String(),
		}).Debug("launching ffmpeg")

		res := e.Runner.Run(ctx, e.FFmpeg, s.Args(input, output), timeout)
		if res.Err != nil {
			e.Trace.Addf("%s failed: %v %s", s.Name, res.Err, stderrTail(res.Stderr))
			continue
		}

		info, statErr := os.Stat(output)
		if statErr != nil || info.Size() == 0 {
			// Zero exit but nothing usable on disk. Treat as a failure of
			// this strategy, not of the invocation.
			e.Trace.Addf("%s produced empty output", s.Name)
			continue
		}

		e.Trace.Addf("%s succeeded: %d bytes (.%s)", s.Name, info.Size(), s.Ext)
		return &Outcome{
			OutputPath: output,
			Ext:        s.Ext,
			Strategy:   s.Name,
			SizeBytes:  info.Size(),
			Attempted:  attempted,
		}, nil
	}

	cerr := models.NewError(models.CodeAllStrategiesFailed,
		"every transcoding strategy failed (%s)", strings.Join(attempted, ", "))
	cerr.Attempted = attempted
	return nil, cerr
}

// stderrTail condenses ffmpeg stderr to its last lines for the trace.
func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > 240 {
		stderr = stderr[len(stderr)-240:]
	}
	return "[" + strings.ReplaceAll(stderr, "\n", " | ") + "]"
}
