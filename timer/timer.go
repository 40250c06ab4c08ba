// timer/timer.go
package timer

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Task is a one-shot fishing resolution. It carries its target as data; the
// handler revalidates it against live state when it fires.
type Task struct {
	ID          int64
	RoomCode    string
	PlayerID    string
	PlayerIndex int
	ScheduledAt time.Time
	Execute     time.Time
	index       int
}

// Delay is the wait between scheduling and execution.
func (t Task) Delay() time.Duration {
	return t.Execute.Sub(t.ScheduledAt)
}

type TimerQueue []*Task

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	if q[i].Execute.Equal(q[j].Execute) {
		return q[i].ID < q[j].ID
	}
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// TimerManager holds pending tasks ordered by execution time and fires them
// one at a time from Run. There is no cancellation: a scheduled task always
// reaches the handler.
type TimerManager struct {
	queue      TimerQueue
	mutex      sync.Mutex
	nextId     int64
	resolution time.Duration
	wake       chan struct{}
}

func NewTimerManager(resolution time.Duration) *TimerManager {
	manager := &TimerManager{
		queue:      make(TimerQueue, 0),
		nextId:     1,
		resolution: resolution,
		wake:       make(chan struct{}, 1),
	}
	heap.Init(&manager.queue)
	return manager
}

// Schedule queues task and returns its ID. Execute must be set by the caller.
func (m *TimerManager) Schedule(task Task) int64 {
	m.mutex.Lock()
	task.ID = m.nextId
	m.nextId++
	heap.Push(&m.queue, &task)
	m.mutex.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return task.ID
}

// Len reports the number of pending tasks.
func (m *TimerManager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Run fires due tasks through handler until ctx is done. Tasks fire in
// execution order, never concurrently with each other.
func (m *TimerManager) Run(ctx context.Context, handler func(Task)) {
	ticker := time.NewTicker(m.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.wake:
		}

		for _, task := range m.due(time.Now()) {
			handler(task)
		}
	}
}

func (m *TimerManager) due(now time.Time) []Task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var tasks []Task
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		tasks = append(tasks, *task)
	}
	return tasks
}
