// Package status carries one-way, human-readable status messages from the
// launcher core to whatever presents them.
package status

import (
	"context"
	"fmt"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the display width status texts are cut to.
const DefaultWidth = 200

const ellipsis = "..."

// Level classifies a Message.
type Level int

const (
	Info Level = iota
	Progress
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Progress:
		return "progress"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Message is one status update.
type Message struct {
	Level Level
	Text  string
}

// Truncate cuts text to at most width display columns, ending it with
// "..." when it was shortened.
func Truncate(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, ellipsis)
}

// Emitter writes messages to a channel owned by the consumer. A nil
// *Emitter discards everything.
//
// Progress messages are dropped when the consumer is not ready; every other
// level blocks until it is delivered or ctx is done.
type Emitter struct {
	ch    chan<- Message
	width int
}

// NewEmitter returns an Emitter sending on ch. A nil ch yields a discarding
// emitter.
func NewEmitter(ch chan<- Message, width int) *Emitter {
	if ch == nil {
		return nil
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Emitter{ch: ch, width: width}
}

// Emit sends a message of the given level.
func (e *Emitter) Emit(ctx context.Context, level Level, format string, args ...any) {
	if e == nil {
		return
	}
	msg := Message{Level: level, Text: Truncate(fmt.Sprintf(format, args...), e.width)}
	if level == Progress {
		select {
		case e.ch <- msg:
		default:
		}
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case e.ch <- msg:
	case <-ctx.Done():
		// Deliver terminal messages even after cancellation if the
		// consumer is ready right now.
		select {
		case e.ch <- msg:
		default:
		}
	}
}

func (e *Emitter) Info(ctx context.Context, format string, args ...any) {
	e.Emit(ctx, Info, format, args...)
}

func (e *Emitter) Progress(ctx context.Context, format string, args ...any) {
	e.Emit(ctx, Progress, format, args...)
}

func (e *Emitter) Warn(ctx context.Context, format string, args ...any) {
	e.Emit(ctx, Warn, format, args...)
}

func (e *Emitter) Error(ctx context.Context, format string, args ...any) {
	e.Emit(ctx, Error, format, args...)
}
