package progress

import (
	"go.uber.org/zap"
)

// Sink receives events from a Reporter, one at a time and in order.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans events out to several sinks.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ev Event) {
		for _, s := range sinks {
			s.Emit(ev)
		}
	})
}

// ChanSink delivers events over a channel that is closed after the terminal
// event. Uploading events are dropped when the buffer is full; the others
// block until the consumer reads them, so the consumer must drain until close.
type ChanSink struct {
	ch chan Event
}

// NewChanSink creates a channel sink with the given buffer.
func NewChanSink(buffer int) *ChanSink {
	return &ChanSink{ch: make(chan Event, buffer)}
}

// Events is the channel to drain.
func (c *ChanSink) Events() <-chan Event {
	return c.ch
}

func (c *ChanSink) Emit(ev Event) {
	if ev.Phase == PhaseUploading {
		select {
		case c.ch <- ev:
		default:
		}
		return
	}
	c.ch <- ev
	if ev.Terminal() {
		close(c.ch)
	}
}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Emit(ev Event) {
	fields := []zap.Field{zap.String("phase", string(ev.Phase)), zap.Int64("seq", ev.Seq)}
	switch ev.Phase {
	case PhaseUploading:
		l.logger.Debug("progress", append(fields, zap.Int("percent", ev.Percent))...)
	case PhaseError:
		l.logger.Warn("progress", append(fields,
			zap.String("kind", string(ev.Error.Kind)), zap.String("message", ev.Error.Message))...)
	case PhaseDone:
		l.logger.Info("progress", append(fields,
			zap.String("language", ev.Result.Language), zap.Int("chars", len(ev.Result.Text)))...)
	default:
		l.logger.Info("progress", fields...)
	}
}
