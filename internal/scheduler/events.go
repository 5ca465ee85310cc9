package scheduler

// Events receives run progress for display. Implementations must be safe
// for concurrent use; workers call them directly.
type Events interface {
	Log(message string)
	Progress(done, total int)
	Preview(outputPath string)
}

// NoopEvents discards all notifications.
type NoopEvents struct{}

func (NoopEvents) Log(string)        {}
func (NoopEvents) Progress(int, int) {}
func (NoopEvents) Preview(string)    {}
