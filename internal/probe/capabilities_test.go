package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"audioconvert/internal/trace"
)

const fullEncoderListing = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 A....D aac                  AAC (Advanced Audio Coding)
 A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3) (codec mp3)
 A....D pcm_s16le            PCM signed 16-bit little-endian
 S..... srt                  SubRip subtitle
`

const minimalEncoderListing = `Encoders:
 A....D aac                  AAC (Advanced Audio Coding)
 A....D pcm_s16le            PCM signed 16-bit little-endian
`

func TestParseEncodersFull(t *testing.T) {
	caps := ParseEncoders(fullEncoderListing)
	assert.True(t, caps.Probed)
	assert.True(t, caps.LibMP3Lame)
	assert.True(t, caps.AAC)
	assert.True(t, caps.PCM)
	assert.False(t, caps.NativeMP3)
	assert.False(t, caps.FDKAAC)
	assert.Equal(t, []string{"libmp3lame", "aac", "pcm_s16le"}, caps.List())
}

func TestParseEncodersMinimalBuild(t *testing.T) {
	caps := ParseEncoders(minimalEncoderListing)
	assert.True(t, caps.Probed)
	assert.False(t, caps.LibMP3Lame)
	assert.True(t, caps.AAC)
	assert.True(t, caps.PCM)
}

func TestParseEncodersIgnoresVideoAndLegend(t *testing.T) {
	// The legend line " A..... = Audio" must not register as an encoder,
	// and video lines must never set audio flags.
	caps := ParseEncoders(" A..... = Audio\n V....D mp3 bogus video line\n")
	assert.True(t, caps.Probed)
	assert.False(t, caps.NativeMP3)
	assert.Equal(t, 0, len(caps.List()))
}

func TestHasUnknownEncoder(t *testing.T) {
	caps := ParseEncoders(fullEncoderListing)
	assert.False(t, caps.Has("libopus"))
}

func TestDetectEncodersFailureIsNotFatal(t *testing.T) {
	tr := trace.NewRecorder()
	caps := DetectEncoders(context.Background(), "/nonexistent/ffmpeg", time.Second, tr)
	assert.False(t, caps.Probed)
	assert.False(t, caps.LibMP3Lame)
	assert.Equal(t, 1, tr.Len())
}
