package body

import "github.com/san-kum/gravsim/internal/vec"

// Trail is a fixed-capacity ring buffer of past positions.
type Trail struct {
	buf  []vec.Vec2
	head int
	size int
}

func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{buf: make([]vec.Vec2, capacity)}
}

// Push appends a position, evicting the oldest entry when full.
func (t *Trail) Push(p vec.Vec2) {
	if t.size < len(t.buf) {
		t.buf[(t.head+t.size)%len(t.buf)] = p
		t.size++
		return
	}
	t.buf[t.head] = p
	t.head = (t.head + 1) % len(t.buf)
}

func (t *Trail) Len() int { return t.size }

func (t *Trail) Cap() int { return len(t.buf) }

// Positions returns a copy of the buffer contents, oldest first.
func (t *Trail) Positions() []vec.Vec2 {
	out := make([]vec.Vec2, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	return out
}

// Latest returns the most recent entry.
func (t *Trail) Latest() (vec.Vec2, bool) {
	if t.size == 0 {
		return vec.Vec2{}, false
	}
	return t.buf[(t.head+t.size-1)%len(t.buf)], true
}
