package converter

import (
	"fmt"

	"audioconvert/internal/probe"
)

// Strategy is one concrete, fixed transcoder argument profile. Strategies
// are statically defined and ranked; there is no adaptive bitrate search.
// The first success wins regardless of output quality.
type Strategy struct {
	Name string

	// Encoder is the ffmpeg encoder this strategy requires, empty for
	// stream copy. The planner drops strategies whose encoder is absent
	// from the probed capabilities.
	Encoder string

	Bitrate    string // "" to omit -b:a
	SampleRate int    // 0 to omit -ar
	Channels   int    // 0 to omit -ac
	Format     string // ffmpeg muxer (-f)
	Ext        string // output file extension

	// SourceCodec marks a strategy tuned for inputs carrying this codec.
	// The planner promotes matching strategies when the input is classified
	// as a mobile recording.
	SourceCodec string

	// inputFlags are placed before -i, filterArgs after the codec args.
	inputFlags []string
	filterArgs []string
}

// DefaultStrategies returns the static priority-ordered policy table. The
// exact list and ordering are policy, not contract; keep changes here and
// nowhere else.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "mp3-lame-192", Encoder: "libmp3lame",
			Bitrate: "192k", SampleRate: 44100, Channels: 2,
			Format: "mp3", Ext: "mp3",
		},
		{
			Name: "mp3-lame-128", Encoder: "libmp3lame",
			Bitrate: "128k", SampleRate: 44100, Channels: 2,
			Format: "mp3", Ext: "mp3",
		},
		{
			Name: "mp3-lame-voicememo", Encoder: "libmp3lame",
			Bitrate: "128k", SampleRate: 44100, Channels: 2,
			Format: "mp3", Ext: "mp3",
			SourceCodec: "aac",
			// Voice-memo files carry edit lists and loose timestamps;
			// regenerate PTS and resample asynchronously.
			inputFlags: []string{"-fflags", "+genpts+discardcorrupt"},
			filterArgs: []string{"-af", "aresample=async=1"},
		},
		{
			Name: "mp3-native-128", Encoder: "mp3",
			Bitrate: "128k", SampleRate: 44100, Channels: 2,
			Format: "mp3", Ext: "mp3",
		},
		{
			Name:   "aac-copy",
			Format: "ipod", Ext: "m4a",
			SourceCodec: "aac",
		},
		{
			Name: "aac-reencode", Encoder: "aac",
			Bitrate: "128k",
			Format:  "adts", Ext: "aac",
		},
		{
			Name: "wav-pcm", Encoder: "pcm_s16le",
			SampleRate: 44100, Channels: 2,
			Format: "wav", Ext: "wav",
		},
	}
}

// Args builds the full ffmpeg argument list for this strategy.
func (s Strategy) Args(input, output string) []string {
	args := []string{"-y", "-hide_banner", "-nostdin"}
	args = append(args, s.inputFlags...)
	args = append(args, "-i", input, "-vn")

	if s.Encoder != "" {
		args = append(args, "-c:a", s.Encoder)
	} else {
		args = append(args, "-c:a", "copy")
	}
	if s.Bitrate != "" {
		args = append(args, "-b:a", s.Bitrate)
	}
	if s.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", s.SampleRate))
	}
	if s.Channels > 0 {
		args = append(args, "-ac", fmt.Sprintf("%d", s.Channels))
	}
	args = append(args, s.filterArgs...)
	args = append(args, "-f", s.Format, output)
	return args
}

// Plan computes the active candidate list for one invocation: the static
// table filtered by encoder availability, then reordered for the input
// classification. This happens exactly once, before the first attempt.
func Plan(all []Strategy, caps probe.EncoderCapabilities, profile *probe.InputProfile) []Strategy {
	// Filter only when capabilities are known; a failed capability probe
	// must not shrink the list.
	var kept []Strategy
	for _, s := range all {
		if caps.Probed && s.Encoder != "" && !caps.Has(s.Encoder) {
			continue
		}
		kept = append(kept, s)
	}

	if profile == nil || !profile.IsMobileRecording {
		return kept
	}

	// Stable promotion: codec-matched strategies move to the front while
	// keeping their relative order, then everything else in table order.
	var matched, rest []Strategy
	for _, s := range kept {
		if s.SourceCodec != "" && s.SourceCodec == profile.AudioCodec {
			matched = append(matched, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(matched, rest...)
}
