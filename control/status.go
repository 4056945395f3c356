package control

import "sync"

// TaskStatus reports whether the host is busy with a task.
type TaskStatus interface {
	TaskStatus() (running bool, summary string)
}

// StatusBoard is a TaskStatus the host updates as tasks start and finish.
// It is safe for concurrent use.
type StatusBoard struct {
	mu      sync.Mutex
	running bool
	summary string
}

func (s *StatusBoard) SetTaskRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// SetSummary sets a one-line description of the current or last task. An
// empty summary clears it.
func (s *StatusBoard) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

func (s *StatusBoard) TaskStatus() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.summary
}
