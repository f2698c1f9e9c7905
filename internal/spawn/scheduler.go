package spawn

import (
	"sort"
	"sync"
)

// deferredTask is a callback scheduled against the simulation clock.
type deferredTask struct {
	id       int64
	deadline float64 // accumulated sim seconds
	interval float64 // 0 = one-shot, >0 = recurring
	fn       func()
}

// TaskQueue is a deferred-task queue driven by the simulation's own tick
// clock, never wall-clock timers: behavior is deterministic and testable
// without sleeps. Callbacks must re-validate current state when they fire,
// since state may have changed during the deferral.
type TaskQueue struct {
	mu     sync.Mutex
	now    float64
	nextID int64
	tasks  map[int64]*deferredTask
}

// NewTaskQueue creates an empty task queue at sim time zero.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		tasks: make(map[int64]*deferredTask),
	}
}

// Now returns accumulated simulated seconds.
func (q *TaskQueue) Now() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.now
}

// Schedule registers a one-shot callback to fire after delay sim seconds.
// Returns the task id for cancellation.
func (q *TaskQueue) Schedule(delay float64, fn func()) int64 {
	return q.add(delay, 0, fn)
}

// ScheduleRecurring registers a callback firing every interval sim seconds
// until cancelled.
func (q *TaskQueue) ScheduleRecurring(interval float64, fn func()) int64 {
	return q.add(interval, interval, fn)
}

func (q *TaskQueue) add(delay, interval float64, fn func()) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	id := q.nextID
	q.tasks[id] = &deferredTask{
		id:       id,
		deadline: q.now + delay,
		interval: interval,
		fn:       fn,
	}
	return id
}

// Cancel removes a scheduled task. No-op if already fired or cancelled.
func (q *TaskQueue) Cancel(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.tasks, id)
}

// Clear drops every outstanding task so a reconfiguration does not leak a
// recurring callback racing against a fresh population.
func (q *TaskQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = make(map[int64]*deferredTask)
}

// Pending returns the number of outstanding tasks.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Advance moves the sim clock forward by dt seconds and fires every due
// task in deadline order. Recurring tasks reschedule themselves; a large
// dt fires a recurring task multiple times. Callbacks run outside the
// lock and may schedule or cancel tasks.
func (q *TaskQueue) Advance(dt float64) {
	q.mu.Lock()
	q.now += dt
	q.mu.Unlock()

	for {
		due := q.collectDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

// collectDue removes due one-shot tasks and advances due recurring tasks
// by one interval, returning the batch sorted by deadline (id breaks ties
// for determinism).
func (q *TaskQueue) collectDue() []*deferredTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*deferredTask
	for id, t := range q.tasks {
		if t.deadline > q.now {
			continue
		}
		fired := *t
		due = append(due, &fired)

		if t.interval > 0 {
			t.deadline += t.interval
		} else {
			delete(q.tasks, id)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].id < due[j].id
	})
	return due
}
