// Package speech describes the speech-recognition capability the voice
// adapter drives. Implementations live in infrastructure/recognizer.
package speech

import (
	"context"
	"errors"
	"time"
)

// DefaultLocale is the only locale the command grammar understands
const DefaultLocale = "es-MX"

var (
	// ErrNoSpeech is returned when a session ends without an utterance
	ErrNoSpeech = errors.New("no speech detected")
	// ErrAborted is returned when the session was stopped before a result
	ErrAborted = errors.New("recognition aborted")
)

// RecognizeOptions configures one single-shot recognition session
type RecognizeOptions struct {
	Locale          string
	InterimResults  bool
	MaxAlternatives int
	// Timeout bounds the wait for speech; zero waits until ctx is done
	Timeout time.Duration
}

// SingleShot is the configuration every voice session uses
func SingleShot(timeout time.Duration) RecognizeOptions {
	return RecognizeOptions{
		Locale:          DefaultLocale,
		InterimResults:  false,
		MaxAlternatives: 1,
		Timeout:         timeout,
	}
}

// Recognizer turns one utterance into text. Recognize blocks until a final
// transcript, an error, or ctx cancellation.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context, opts RecognizeOptions) (string, error)
}
