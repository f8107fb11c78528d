// Package input turns key events into snake headings.
package input

import (
	"strings"
	"sync"

	"github.com/hoshinonyaruko/snake-grid/structs"
)

// Source delivers directional key presses.
type Source interface {
	// Listen calls fn for every directional key press until stop is called.
	// No call to fn starts after stop returns.
	Listen(fn func(structs.Direction)) (stop func())
}

// 合法的方向集合
var keyDirections = map[string]structs.Direction{
	"arrowup":    structs.Up,
	"up":         structs.Up,
	"arrowdown":  structs.Down,
	"down":       structs.Down,
	"arrowleft":  structs.Left,
	"left":       structs.Left,
	"arrowright": structs.Right,
	"right":      structs.Right,
}

// Parse maps a key name such as "ArrowUp" or "left" to a heading. Any other
// key reports ok == false and should be ignored.
func Parse(key string) (d structs.Direction, ok bool) {
	d, ok = keyDirections[strings.ToLower(strings.TrimSpace(key))]
	return d, ok
}

// Queue is a Source fed by Push, used where key presses arrive as requests
// rather than from a device.
type Queue struct {
	mu       sync.Mutex
	listener func(structs.Direction)
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Listen(fn func(structs.Direction)) func() {
	q.mu.Lock()
	q.listener = fn
	q.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			q.listener = nil
			q.mu.Unlock()
		})
	}
}

// Push delivers key to the current listener. It returns false if the key is
// not directional. Presses with no listener are dropped.
func (q *Queue) Push(key string) bool {
	d, ok := Parse(key)
	if !ok {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.listener != nil {
		q.listener(d)
	}
	return true
}
