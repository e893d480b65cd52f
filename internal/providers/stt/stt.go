package stt

import "context"

// Provider transcribes a recorded answer chunk. Transcripts are surfaced to
// the client, which submits the final answer text through the interview API;
// the session core never calls this directly.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
