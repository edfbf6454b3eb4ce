package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioconvert/internal/trace"
	"audioconvert/pkg/models"
)

func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestResolveFindsCandidates(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeBinary(t, dir, "ffmpeg")
	ffprobe := writeFakeBinary(t, dir, "ffprobe")

	tr := trace.NewRecorder()
	bins, err := New([]string{dir}).Resolve(tr)
	require.NoError(t, err)
	assert.Equal(t, ffmpeg, bins.FFmpeg)
	assert.Equal(t, ffprobe, bins.FFprobe)
	assert.Equal(t, 1, tr.Len())
}

func TestResolveHonorsCandidateOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeFakeBinary(t, first, "ffmpeg")
	writeFakeBinary(t, first, "ffprobe")
	writeFakeBinary(t, second, "ffmpeg")
	writeFakeBinary(t, second, "ffprobe")

	bins, err := New([]string{first, second}).Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, want, bins.FFmpeg)
}

func TestResolveSkipsDirectories(t *testing.T) {
	decoy := t.TempDir()
	real := t.TempDir()
	// A directory named like the binary must not satisfy the lookup.
	require.NoError(t, os.Mkdir(filepath.Join(decoy, "ffmpeg"), 0o755))
	want := writeFakeBinary(t, real, "ffmpeg")
	writeFakeBinary(t, real, "ffprobe")
	writeFakeBinary(t, decoy, "ffprobe")

	bins, err := New([]string{decoy, real}).Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, want, bins.FFmpeg)
}

func TestResolveBinaryNotFound(t *testing.T) {
	empty := t.TempDir()
	t.Setenv("PATH", empty) // no bare-command fallback either

	_, err := New([]string{empty}).Resolve(nil)
	require.Error(t, err)

	var cerr *models.ConvertError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, models.CodeBinaryNotFound, cerr.Code)
}

func TestResolveFallsBackToPath(t *testing.T) {
	pathDir := t.TempDir()
	writeFakeBinary(t, pathDir, "ffmpeg")
	writeFakeBinary(t, pathDir, "ffprobe")
	t.Setenv("PATH", pathDir)

	bins, err := New([]string{t.TempDir()}).Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(pathDir, "ffmpeg"), bins.FFmpeg)
}
