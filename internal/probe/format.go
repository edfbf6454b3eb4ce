package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"audioconvert/internal/trace"
)

// InputProfile is the derived classification of the downloaded file. A nil
// profile (probe failure) means the conversion proceeds blind.
type InputProfile struct {
	FormatName string
	AudioCodec string
	SampleRate int
	Channels   int
	SizeBytes  int64
	Duration   float64

	// IsMobileRecording marks the QuickTime-authored AAC profile produced by
	// phone voice recorders. These files carry edit lists and priming frames
	// that trip some demuxers, so the planner promotes a tuned strategy.
	IsMobileRecording bool
}

// InspectFile runs the probe companion against path under a short
// sub-timeout and parses the structured output. Any failure returns
// (nil, err) and the caller continues without a profile.
func InspectFile(ctx context.Context, ffprobePath, path string, timeout time.Duration, tr *trace.Recorder) (*InputProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if tr != nil {
			tr.Addf("format probe failed: %v", err)
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	profile, err := ParseFormatJSON(out)
	if err != nil {
		if tr != nil {
			tr.Addf("format probe parse failed: %v", err)
		}
		return nil, err
	}

	if profile.SizeBytes == 0 {
		if info, statErr := os.Stat(path); statErr == nil {
			profile.SizeBytes = info.Size()
		}
	}
	if tr != nil {
		tr.Addf("input: format=%s codec=%s rate=%d ch=%d mobile=%v",
			profile.FormatName, profile.AudioCodec, profile.SampleRate,
			profile.Channels, profile.IsMobileRecording)
	}
	return profile, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	Tags       map[string]string `json:"tags"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
}

// ParseFormatJSON converts raw ffprobe JSON into an InputProfile. Exported
// for testing without a real ffprobe binary. ffprobe returns numbers as
// strings; unparsable values default to zero rather than failing.
func ParseFormatJSON(data []byte) (*InputProfile, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	profile := &InputProfile{
		FormatName: raw.Format.FormatName,
		SizeBytes:  parseInt64(raw.Format.Size),
		Duration:   parseFloat(raw.Format.Duration),
	}
	for _, s := range raw.Streams {
		if s.CodecType != "audio" {
			continue
		}
		profile.AudioCodec = s.CodecName
		profile.Channels = s.Channels
		profile.SampleRate = parseInt(s.SampleRate)
		break
	}

	profile.IsMobileRecording = classifyMobileRecording(raw.Format, profile)
	return profile, nil
}

// classifyMobileRecording detects the phone voice-memo profile: an MP4-family
// container carrying AAC, authored by QuickTime (brand "qt  " or any
// com.apple.quicktime.* tag).
func classifyMobileRecording(f ffprobeFormat, p *InputProfile) bool {
	if p.AudioCodec != "aac" {
		return false
	}
	if !strings.Contains(f.FormatName, "mp4") && !strings.Contains(f.FormatName, "m4a") {
		return false
	}
	if strings.TrimSpace(f.Tags["major_brand"]) == "qt" {
		return true
	}
	for key := range f.Tags {
		if strings.HasPrefix(key, "com.apple.quicktime") {
			return true
		}
	}
	return false
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
