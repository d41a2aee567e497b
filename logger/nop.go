package logger

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNop returns a logger that discards all entries.
func NewNop() Logger { return &NoOpLogger{} }

func (*NoOpLogger) Debug(string, ...Field) {}
func (*NoOpLogger) Info(string, ...Field) {}
func (*NoOpLogger) Warn(string, ...Field) {}
func (*NoOpLogger) Error(string, ...Field) {}
func (*NoOpLogger) Fatal(string, ...Field) {}
func (n *NoOpLogger) With(...Field) Logger { return n }
func (*NoOpLogger) Sync() error { return nil }
