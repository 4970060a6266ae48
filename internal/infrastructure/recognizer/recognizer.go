// Package recognizer provides speech.Recognizer implementations.
package recognizer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
)

// ErrNotListening is returned by Push when no session is waiting
var ErrNotListening = shared.NewDomainError(shared.CodeInvalidState, "No voice session is listening")

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func endOf(ctx context.Context, parent context.Context) error {
	if parent.Err() != nil {
		return speech.ErrAborted
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return speech.ErrNoSpeech
	}
	return speech.ErrAborted
}

// ChannelRecognizer receives final transcripts pushed by the presentation
// layer, which keeps doing speech-to-text on the client.
type ChannelRecognizer struct {
	mu      sync.Mutex
	waiting *waiter
}

// waiter is one Recognize call; done closes when it stops listening
type waiter struct {
	ch   chan string
	done <-chan struct{}
}

func (w *waiter) ended() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// NewChannelRecognizer creates a recognizer fed through Push
func NewChannelRecognizer() *ChannelRecognizer {
	return &ChannelRecognizer{}
}

func (r *ChannelRecognizer) Available() bool { return true }

// Recognize waits for the next pushed utterance. A caller whose context has
// ended gives up its slot even before its Recognize call returns.
func (r *ChannelRecognizer) Recognize(ctx context.Context, opts speech.RecognizeOptions) (string, error) {
	waitCtx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()
	w := &waiter{ch: make(chan string, 1), done: waitCtx.Done()}

	r.mu.Lock()
	if r.waiting != nil && !r.waiting.ended() {
		r.mu.Unlock()
		return "", fmt.Errorf("recognizer busy: %w", shared.ErrInvalidState)
	}
	r.waiting = w
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.waiting == w {
			r.waiting = nil
		}
		r.mu.Unlock()
	}()

	select {
	case text := <-w.ch:
		return text, nil
	case <-waitCtx.Done():
		// Push may have won the race with cancellation
		select {
		case text := <-w.ch:
			if ctx.Err() == nil {
				return text, nil
			}
		default:
		}
		return "", endOf(waitCtx, ctx)
	}
}

// Push delivers a final transcript to the waiting session
func (r *ChannelRecognizer) Push(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.waiting
	if w == nil || w.ended() {
		return ErrNotListening
	}
	select {
	case w.ch <- text:
		// a session takes exactly one utterance
		r.waiting = nil
		return nil
	default:
		return ErrNotListening
	}
}

// Listening reports whether a session is waiting for an utterance
func (r *ChannelRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting != nil && !r.waiting.ended()
}

// ReaderRecognizer reads one line per session, for terminals and scripts.
type ReaderRecognizer struct {
	once  sync.Once
	src   io.Reader
	lines chan string
	err   error
}

// NewReaderRecognizer reads utterances from r
func NewReaderRecognizer(r io.Reader) *ReaderRecognizer {
	return &ReaderRecognizer{src: r, lines: make(chan string)}
}

func (r *ReaderRecognizer) Available() bool { return r.src != nil }

func (r *ReaderRecognizer) start() {
	go func() {
		sc := bufio.NewScanner(r.src)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			r.lines <- line
		}
		r.err = sc.Err()
		close(r.lines)
	}()
}

// Recognize returns the next non-empty line
func (r *ReaderRecognizer) Recognize(ctx context.Context, opts speech.RecognizeOptions) (string, error) {
	if r.src == nil {
		return "", shared.ErrVoiceUnsupported
	}
	r.once.Do(r.start)

	waitCtx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	select {
	case line, ok := <-r.lines:
		if !ok {
			if r.err != nil {
				return "", fmt.Errorf("reading utterance: %w", r.err)
			}
			return "", io.EOF
		}
		return line, nil
	case <-waitCtx.Done():
		return "", endOf(waitCtx, ctx)
	}
}

// Unsupported is the capability of an environment without speech input
type Unsupported struct{}

func (Unsupported) Available() bool { return false }

func (Unsupported) Recognize(context.Context, speech.RecognizeOptions) (string, error) {
	return "", shared.ErrVoiceUnsupported
}

var (
	_ speech.Recognizer = (*ChannelRecognizer)(nil)
	_ speech.Recognizer = (*ReaderRecognizer)(nil)
	_ speech.Recognizer = Unsupported{}
)
