package server

import "bytes"

// DetectAudioType maps the payload's leading bytes to a content type and
// file extension. The response content type must reflect what was actually
// produced: a strategy may legitimately emit a different container than the
// one originally requested.
func DetectAudioType(b []byte) (contentType, ext string) {
	switch {
	case len(b) >= 3 && bytes.Equal(b[:3], []byte("ID3")):
		return "audio/mpeg", "mp3"
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return "audio/wav", "wav"
	case len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp")):
		return "audio/mp4", "m4a"
	// ADTS AAC sync: 12 set bits then a known header layout byte. Checked
	// before the MPEG-audio sync, which it would otherwise match.
	case len(b) >= 2 && b[0] == 0xFF && (b[1] == 0xF1 || b[1] == 0xF9):
		return "audio/aac", "aac"
	case len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return "audio/mpeg", "mp3"
	default:
		return "application/octet-stream", "bin"
	}
}
