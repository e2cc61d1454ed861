package entity

import "time"

// Audio is one finalized recording, ready for transcription
type Audio struct {
	Data     []byte
	MimeType string
	Duration time.Duration
}

// Size returns the audio payload length in bytes
func (a *Audio) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
