// Package clock provides the repeating-task scheduler that drives game ticks.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled task. It is safe to call more than once. After
// Cancel returns the task will not run again.
type Cancel func()

// Scheduler runs fn every period until cancelled.
type Scheduler interface {
	Every(period time.Duration, fn func()) Cancel
}

// Ticker schedules tasks on wall-clock time. Each task runs on its own
// goroutine; its Cancel waits for that goroutine and must not be called from
// inside fn.
type Ticker struct{}

func (Ticker) Every(period time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(period)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// stop wins over a tick that raced with it
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
			<-done
		})
	}
}

// Manual is a virtual clock. Tasks fire only from Advance, on the calling
// goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	tasks  map[int]*manualTask
}

type manualTask struct {
	id     int
	period time.Duration
	next   time.Duration
	fn     func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

func (m *Manual) Every(period time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.tasks[id] = &manualTask{id: id, period: period, next: m.now + period, fn: fn}

	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Advance moves virtual time forward by d, firing every task that comes due
// in order of due time.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		task := m.earliest(target)
		if task == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = task.next
		task.next += task.period
		fn := task.fn
		m.mu.Unlock()

		fn()
	}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending reports the number of live tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) earliest(limit time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if t.next <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next != due[j].next {
			return due[i].next < due[j].next
		}
		return due[i].id < due[j].id
	})
	return due[0]
}
