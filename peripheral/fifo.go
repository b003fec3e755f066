package peripheral

import (
	"iter"
)

// fifo is a circular byte queue with a fixed capacity.
type fifo struct {
	capacity int

	readIndex  int
	writeIndex int
	size       int
	data       []byte
}

// rewind empties the queue.
func (q *fifo) rewind() {
	q.readIndex = 0
	q.writeIndex = 0
	q.size = 0
	q.data = make([]byte, q.capacity)
}

// receive yields bytes from the queue until it is empty.
func (q *fifo) receive() iter.Seq[byte] {
	return func(yield func(value byte) bool) {
		for q.size > 0 {
			value := q.data[q.readIndex]
			q.readIndex++
			if q.readIndex == q.capacity {
				q.readIndex = 0
			}
			q.size--
			if !yield(value) {
				return
			}
		}
	}
}

// send appends a byte, or returns ErrFull.
func (q *fifo) send(value byte) (err error) {
	if q.size >= q.capacity {
		err = ErrFull
		return
	}

	q.data[q.writeIndex] = value

	q.writeIndex++
	if q.writeIndex == q.capacity {
		q.writeIndex = 0
	}
	q.size++

	return
}

// pop removes the oldest byte, if any.
func (q *fifo) pop() (value byte, ok bool) {
	next, stop := iter.Pull(q.receive())
	defer stop()

	return next()
}

func (q *fifo) len() int {
	return q.size
}
