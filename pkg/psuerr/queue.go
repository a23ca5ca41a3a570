package psuerr

import "sync"

// DefaultQueueSize is the default error queue capacity.
const DefaultQueueSize = 20

// Queue is a bounded FIFO of reported error codes.
// When full, the newest entry is replaced by CodeQueueOverflow.
// It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	codes []Code
	size  int
}

// NewQueue creates a queue holding at most size codes.
// A size below 2 is raised to 2 so an overflow marker always fits.
func NewQueue(size int) *Queue {
	if size < 2 {
		size = 2
	}
	return &Queue{size: size}
}

// ReportError appends a code to the queue.
func (q *Queue) ReportError(code Code) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.codes) < q.size {
		q.codes = append(q.codes, code)
		return
	}
	q.codes[len(q.codes)-1] = CodeQueueOverflow
}

// Pop removes and returns the oldest code.
// Returns CodeNone, false when the queue is empty.
func (q *Queue) Pop() (Code, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.codes) == 0 {
		return CodeNone, false
	}
	code := q.codes[0]
	q.codes = q.codes[1:]
	return code, true
}

// Len returns the number of queued codes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.codes)
}

// Clear drops all queued codes.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.codes = nil
}
