// Package probe inspects the deployed ffmpeg build and the downloaded input
// file. Both probes are advisory: any failure degrades strategy selection
// but never aborts the invocation.
package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"audioconvert/internal/trace"
)

// EncoderCapabilities records which audio encoders the deployed ffmpeg build
// actually ships. Static or minimal builds routinely omit libmp3lame, so the
// strategy planner filters on these flags when they are known.
type EncoderCapabilities struct {
	// Probed is false when the capability probe itself failed; all other
	// flags are then meaningless and no filtering is applied.
	Probed bool

	LibMP3Lame bool
	NativeMP3  bool
	AAC        bool
	FDKAAC     bool
	PCM        bool
}

// Has reports whether the named encoder is available.
func (c EncoderCapabilities) Has(encoder string) bool {
	switch encoder {
	case "libmp3lame":
		return c.LibMP3Lame
	case "mp3":
		return c.NativeMP3
	case "aac":
		return c.AAC
	case "libfdk_aac":
		return c.FDKAAC
	case "pcm_s16le":
		return c.PCM
	default:
		return false
	}
}

// List returns the names of available encoders, for health reporting.
func (c EncoderCapabilities) List() []string {
	var out []string
	for _, name := range []string{"libmp3lame", "mp3", "aac", "libfdk_aac", "pcm_s16le"} {
		if c.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// DetectEncoders runs the transcoder's encoder listing under a short
// sub-timeout and parses it. On timeout or non-zero exit it returns the
// zero capabilities (Probed=false) rather than an error.
func DetectEncoders(ctx context.Context, ffmpegPath string, timeout time.Duration, tr *trace.Recorder) EncoderCapabilities {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if tr != nil {
			tr.Addf("encoder probe failed: %v", err)
		}
		return EncoderCapabilities{}
	}

	caps := ParseEncoders(out.String())
	if tr != nil {
		tr.Addf("encoders available: %s", strings.Join(caps.List(), ","))
	}
	return caps
}

// ParseEncoders scans ffmpeg's -encoders listing. Each encoder appears as a
// whitespace-separated token on its own line ("A..... libmp3lame ..."), so a
// token match is enough; substring matching would confuse "mp3" with
// "libmp3lame".
func ParseEncoders(listing string) EncoderCapabilities {
	caps := EncoderCapabilities{Probed: true}
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// Audio encoder lines start with a flag column beginning "A".
		if !strings.HasPrefix(fields[0], "A") {
			continue
		}
		switch fields[1] {
		case "libmp3lame":
			caps.LibMP3Lame = true
		case "mp3", "mp3_mf":
			caps.NativeMP3 = true
		case "aac", "aac_at":
			caps.AAC = true
		case "libfdk_aac":
			caps.FDKAAC = true
		case "pcm_s16le":
			caps.PCM = true
		}
	}
	return caps
}
