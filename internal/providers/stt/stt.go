package stt

import "context"

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

// NormalizeLanguage maps short codes from clients to BCP-47 tags.
func NormalizeLanguage(v string) string {
	switch v {
	case "", "en":
		return "en-US"
	case "id":
		return "id-ID"
	default:
		return v
	}
}
