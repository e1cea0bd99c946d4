package logger

// NopLogger discards every entry. Used in tests and as a safe default.
type NopLogger struct{}

// NewNop creates a new no-op logger instance.
func NewNop() Logger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(string, ...Field) {}
func (l *NopLogger) Info(string, ...Field)  {}
func (l *NopLogger) Warn(string, ...Field)  {}
func (l *NopLogger) Error(string, ...Field) {}
func (l *NopLogger) Fatal(string, ...Field) {}

// With returns the same no-op logger.
func (l *NopLogger) With(...Field) Logger { return l }

// Sync does nothing and returns nil.
func (l *NopLogger) Sync() error { return nil }
