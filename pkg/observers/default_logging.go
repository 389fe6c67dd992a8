package observers

// NewDefaultLoggingObserver creates a logging observer on slog.Default at info level
func NewDefaultLoggingObserver[S, T comparable]() *LoggingObserver[S, T] {
	return NewLoggingObserver[S, T](WithPrefix("StateMachine"))
}
