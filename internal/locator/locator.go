// Package locator resolves the ffmpeg and ffprobe executables across the
// deployment environments this service runs in: a bundled layer directory,
// the working directory, well-known system locations, and finally the bare
// command name resolved via PATH.
package locator

import (
	"os"
	"os/exec"
	"path/filepath"

	"audioconvert/internal/trace"
	"audioconvert/pkg/models"
)

// Binaries holds the resolved transcoder and probe companion paths for one
// invocation. Immutable once resolved.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// Locator finds executables by checking an ordered list of directories
// before falling back to PATH resolution.
type Locator struct {
	dirs []string
}

// DefaultDirs is the candidate directory order for serverless deployments:
// the bundled layer location first, then the working directory, then the
// usual system installs.
var DefaultDirs = []string{
	"/var/task/bin",
	".",
	"./bin",
	"/opt/bin",
	"/usr/local/bin",
	"/usr/bin",
}

// New creates a Locator over the given candidate directories; an empty list
// falls back to DefaultDirs.
func New(dirs []string) *Locator {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	return &Locator{dirs: dirs}
}

// Resolve locates both required executables. Failure to find either is
// terminal for the invocation and is never retried.
func (l *Locator) Resolve(tr *trace.Recorder) (Binaries, error) {
	ffmpeg, err := l.find("ffmpeg")
	if err != nil {
		return Binaries{}, err
	}
	ffprobe, err := l.find("ffprobe")
	if err != nil {
		return Binaries{}, err
	}
	if tr != nil {
		tr.Addf("located ffmpeg=%s ffprobe=%s", ffmpeg, ffprobe)
	}
	return Binaries{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}

// find returns the first candidate path that exists as a regular file, or
// the PATH-resolved location of the bare command name as a last resort.
func (l *Locator) find(name string) (string, error) {
	for _, dir := range l.dirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", models.NewError(models.CodeBinaryNotFound,
		"%s not found at any candidate path or on PATH", name)
}
