package engine

import (
	"context"
	"sync"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

type jobKind string

const (
	jobCreate jobKind = "create"
	jobPatch  jobKind = "patch"
	jobDelete jobKind = "delete"
)

// mirrorJob is one remote write derived from a local mutation.
type mirrorJob struct {
	kind    jobKind
	userID  string
	movieID int64
	fields  domain.Fields
	patch   domain.Patch
}

// mirrorQueue is an unbounded FIFO drained by a single worker, which keeps
// writes for the same movie in submission order.
type mirrorQueue struct {
	mu   sync.Mutex
	jobs []mirrorJob
	wake chan struct{}
	// idle is closed while the queue is empty and no job is running.
	idle chan struct{}
}

func newMirrorQueue() *mirrorQueue {
	idle := make(chan struct{})
	close(idle)
	return &mirrorQueue{
		wake: make(chan struct{}, 1),
		idle: idle,
	}
}

func (q *mirrorQueue) push(j mirrorJob) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	select {
	case <-q.idle:
		q.idle = make(chan struct{})
	default:
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next pops the head job. When the queue is empty it marks the queue idle.
func (q *mirrorQueue) next() (mirrorJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		q.markIdleLocked()
		return mirrorJob{}, false
	}
	j := q.jobs[0]
	q.jobs[0] = mirrorJob{}
	q.jobs = q.jobs[1:]
	return j, true
}

func (q *mirrorQueue) markIdleLocked() {
	select {
	case <-q.idle:
	default:
		close(q.idle)
	}
}

// discard drops pending jobs. A job already running is not interrupted.
func (q *mirrorQueue) discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.jobs)
	q.jobs = nil
	q.markIdleLocked()
	return n
}

func (q *mirrorQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// wait blocks until the queue is idle or ctx is done.
func (q *mirrorQueue) wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes jobs one at a time until ctx is done.
func (q *mirrorQueue) run(ctx context.Context, exec func(context.Context, mirrorJob)) {
	for {
		if ctx.Err() != nil {
			return
		}
		j, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		exec(ctx, j)
	}
}
