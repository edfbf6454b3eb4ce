package converter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioconvert/internal/locator"
	"audioconvert/pkg/models"
)

// writingRunner succeeds on the first attempt by writing body to the
// declared output path.
type writingRunner struct {
	body  string
	calls int32
}

func (r *writingRunner) Run(_ context.Context, _ string, args []string, _ time.Duration) ExecResult {
	atomic.AddInt32(&r.calls, 1)
	output := args[len(args)-1]
	if err := os.WriteFile(output, []byte(r.body), 0o644); err != nil {
		return ExecResult{Err: err}
	}
	return ExecResult{}
}

func fakeBinDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Regular files satisfy the locator but cannot be executed, so both
	// probes fail gracefully and selection proceeds unfiltered.
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("placeholder"), 0o644))
	}
	return dir
}

func testService(t *testing.T, binDir string, runner Runner) *Service {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &Service{
		Log:          log,
		HTTP:         http.DefaultClient,
		Runner:       runner,
		Locator:      locator.New([]string{binDir}),
		TempDir:      t.TempDir(),
		DownloadCap:  1 << 20,
		TotalBudget:  30 * time.Second,
		SafetyMargin: 500 * time.Millisecond,
		MinDownload:  100 * time.Millisecond,
		ProbeTimeout: 200 * time.Millisecond,
		AttemptCap:   5 * time.Second,
		MinAttempt:   50 * time.Millisecond,
	}
}

func TestProcessEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\x00\x00\x00\x20ftypM4A fake-aac-payload"))
	}))
	defer srv.Close()

	runner := &writingRunner{body: "ID3\x04converted"}
	s := testService(t, fakeBinDir(t), runner)

	res, err := s.Process(context.Background(), srv.URL+"/memo.m4a")
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)

	// Both probes degrade against the placeholder binaries, so no
	// filtering applies and the first-priority strategy runs.
	assert.Equal(t, "mp3-lame-192", res.Outcome.Strategy)
	assert.Equal(t, int32(1), runner.calls)
	assert.Greater(t, res.Trace.Len(), 0)

	// Output lives inside the invocation's scratch dir until cleanup.
	assert.Contains(t, res.Outcome.OutputPath, res.ScratchDir)
	res.Cleanup(s.Log)
	_, statErr := os.Stat(res.ScratchDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessBinaryNotFoundSkipsDownload(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	t.Setenv("PATH", t.TempDir())
	s := testService(t, t.TempDir(), &writingRunner{})

	_, err := s.Process(context.Background(), srv.URL+"/a.m4a")
	require.Error(t, err)

	var cerr *models.ConvertError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, models.CodeBinaryNotFound, cerr.Code)
	assert.Zero(t, atomic.LoadInt32(&hits), "no download may happen without binaries")
}

func TestProcessEmptyDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	runner := &writingRunner{body: "never used"}
	s := testService(t, fakeBinDir(t), runner)

	_, err := s.Process(context.Background(), srv.URL+"/empty.m4a")
	require.Error(t, err)

	var cerr *models.ConvertError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, models.CodeEmptyInput, cerr.Code)
	assert.Zero(t, runner.calls, "zero-byte input must never reach transcoding")
}

func TestProcessInsufficientTimeBeforeDownload(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	s := testService(t, fakeBinDir(t), &writingRunner{})
	s.TotalBudget = 1 * time.Millisecond // gone before the download phase

	_, err := s.Process(context.Background(), srv.URL+"/a.m4a")
	require.Error(t, err)

	var cerr *models.ConvertError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, models.CodeInsufficientTime, cerr.Code)
	assert.Zero(t, atomic.LoadInt32(&hits))
}
