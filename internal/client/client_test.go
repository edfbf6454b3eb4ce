package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioconvert/pkg/models"
)

func TestConvertSuccess(t *testing.T) {
	audio := []byte("ID3\x04payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/convert", r.URL.Path)
		require.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))

		var req models.ConvertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "https://example.com/a.m4a", req.URL)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Disposition", `attachment; filename="converted-1.mp3"`)
		w.Header().Set("X-Processing-Time-Ms", "1234")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	info, err := New(srv.URL, "s3cret").Convert(context.Background(), "https://example.com/a.m4a", &buf)
	require.NoError(t, err)

	assert.Equal(t, audio, buf.Bytes())
	assert.Equal(t, "audio/mpeg", info.ContentType)
	assert.Equal(t, "converted-1.mp3", info.Filename)
	assert.Equal(t, int64(len(audio)), info.SizeBytes)
	assert.Equal(t, int64(1234), info.ProcessingTimeMs)
}

func TestConvertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error:     "every transcoding strategy failed",
			Code:      models.CodeAllStrategiesFailed,
			Attempted: []string{"mp3-lame-192", "wav-pcm"},
		})
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := New(srv.URL, "").Convert(context.Background(), "https://example.com/a.m4a", &buf)
	require.Error(t, err)

	var cerr *models.ConvertError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, models.CodeAllStrategiesFailed, cerr.Code)
	assert.Equal(t, []string{"mp3-lame-192", "wav-pcm"}, cerr.Attempted)
	assert.Zero(t, buf.Len())
}

func TestDispositionFilename(t *testing.T) {
	assert.Equal(t, "a.mp3", dispositionFilename(`attachment; filename="a.mp3"`))
	assert.Equal(t, "", dispositionFilename("attachment"))
	assert.Equal(t, "", dispositionFilename(""))
}
