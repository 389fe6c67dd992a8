// Package observers provides observers for monitoring state machine activity
package observers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anggasct/flite"
)

var _ flite.ExtendedObserver[string, string] = (*LoggingObserver[string, string])(nil)

// Option configures a LoggingObserver
type Option func(*config)

type config struct {
	logger    *slog.Logger
	level     slog.Level
	prefix    string
	machineID string
}

// WithLogger sets the destination logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLevel sets the level transitions are logged at. Rejections are always logged at
// warn and observer failures at error.
func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithPrefix names the machine in every record
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithMachineID adds the machine identifier to every record
func WithMachineID(id string) Option {
	return func(c *config) { c.machineID = id }
}

// LoggingObserver logs machine activity through log/slog
type LoggingObserver[S, T comparable] struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver[S, T comparable](opts ...Option) *LoggingObserver[S, T] {
	cfg := &config{
		logger: slog.Default(),
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if cfg.prefix != "" {
		logger = logger.With(slog.String("machine", cfg.prefix))
	}
	if cfg.machineID != "" {
		logger = logger.With(slog.String("machine_id", cfg.machineID))
	}

	return &LoggingObserver[S, T]{
		logger: logger,
		level:  cfg.level,
	}
}

func (o *LoggingObserver[S, T]) log(level slog.Level, msg string, attrs ...slog.Attr) {
	o.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// OnTransition logs transitions
func (o *LoggingObserver[S, T]) OnTransition(from S, to S, trigger T) {
	o.log(o.level, "state transition",
		slog.String("from", fmt.Sprint(from)),
		slog.String("to", fmt.Sprint(to)),
		slog.String("trigger", fmt.Sprint(trigger)),
	)
}

// OnTriggerRejected logs failed triggers
func (o *LoggingObserver[S, T]) OnTriggerRejected(state S, trigger T, err error) {
	o.log(slog.LevelWarn, "trigger rejected",
		slog.String("state", fmt.Sprint(state)),
		slog.String("trigger", fmt.Sprint(trigger)),
		slog.Any("error", err),
	)
}

// OnTriggerIgnored logs triggers that kept the state
func (o *LoggingObserver[S, T]) OnTriggerIgnored(state S, trigger T) {
	o.log(slog.LevelDebug, "trigger handled without state change",
		slog.String("state", fmt.Sprint(state)),
		slog.String("trigger", fmt.Sprint(trigger)),
	)
}

// OnStateSet logs forced state changes
func (o *LoggingObserver[S, T]) OnStateSet(from S, to S) {
	o.log(o.level, "state set",
		slog.String("from", fmt.Sprint(from)),
		slog.String("to", fmt.Sprint(to)),
	)
}

// OnError logs observer failures
func (o *LoggingObserver[S, T]) OnError(err error) {
	o.log(slog.LevelError, "observer error", slog.Any("error", err))
}
