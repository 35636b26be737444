package output

// LoggerPort takes a message plus alternating key/value pairs:
//
//	log.Info("Tool call", "tool", name, "url", url)
//
// Implementations must never write to stdout, which carries the MCP stdio
// stream.
type LoggerPort interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	WithField(key string, value any) LoggerPort
	WithFields(fields map[string]any) LoggerPort

	// Close flushes buffered entries and releases the log file.
	Close() error
}
