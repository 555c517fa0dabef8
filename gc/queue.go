// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package gc

// Queue is a deduplicating access-order queue. Every item is stored at most
// once; pushing an item that is already queued moves it to the tail.
//
// The zero value is an empty queue ready to use.
type Queue[T comparable] struct {
	lookup map[T]*element[T]

	// head is a sentinel: head.newer is the oldest item, head.older the
	// newest one.
	head element[T]
}

type element[T comparable] struct {
	older *element[T]
	newer *element[T]
	value T
}

func NewQueue[T comparable]() *Queue[T] {
	q := &Queue[T]{}
	q.lazyInit()
	return q
}

func (q *Queue[T]) lazyInit() {
	if q.lookup == nil {
		q.lookup = make(map[T]*element[T])
		q.head.older = &q.head
		q.head.newer = &q.head
	}
}

// Push appends item at the tail, removing any prior occurrence.
func (q *Queue[T]) Push(item T) {
	q.lazyInit()
	e, ok := q.lookup[item]
	if ok {
		e.unlink()
	} else {
		e = &element[T]{value: item}
		q.lookup[item] = e
	}
	e.older = q.head.older
	e.newer = &q.head
	e.older.newer = e
	e.newer.older = e
}

// Remove drops item from the queue. Unknown items are ignored.
func (q *Queue[T]) Remove(item T) {
	e, ok := q.lookup[item]
	if !ok {
		return
	}
	e.unlink()
	delete(q.lookup, item)
}

func (q *Queue[T]) Contains(item T) bool {
	_, ok := q.lookup[item]
	return ok
}

func (q *Queue[T]) Len() int {
	return len(q.lookup)
}

// Items returns a copy of the queue, oldest first.
func (q *Queue[T]) Items() []T {
	out := make([]T, 0, len(q.lookup))
	if q.lookup == nil {
		return out
	}
	for e := q.head.newer; e != &q.head; e = e.newer {
		out = append(out, e.value)
	}
	return out
}

func (e *element[T]) unlink() {
	e.older.newer = e.newer
	e.newer.older = e.older
	e.older = nil
	e.newer = nil
}
