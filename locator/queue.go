// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package locator

import (
	"sync"

	"github.com/gammazero/deque"
)

// Queue is a bounded single-producer/single-consumer queue: once it reaches
// its capacity, the oldest entry is discarded to make room for the newest
// one, so a slow consumer never stalls its producer. It wraps
// gammazero/deque the same way the waveform cache wraps it: the deque
// itself is not concurrency-safe, so every operation here holds a mutex,
// and Pop blocks on a condition variable rather than spinning.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	dq       *deque.Deque
	capacity int
	closed   bool
}

// NewQueue creates a Queue that holds at most capacity entries.
func NewQueue(capacity int) *Queue {
	q := Queue{
		dq:       deque.New(),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return &q
}

// Push appends value to the queue. If the queue is already at capacity, the
// oldest entry is dropped first.
func (q *Queue) Push(value interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if q.dq.Len() >= q.capacity {
		q.dq.PopFront()
	}
	q.dq.PushBack(value)
	q.notEmpty.Signal()
}

// Pop blocks until an entry is available or the queue is closed. ok is
// false only when the queue was closed with nothing left to drain.
func (q *Queue) Pop() (value interface{}, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.dq.Len() == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.dq.Len() == 0 {
		return nil, false
	}
	return q.dq.PopFront(), true
}

// Close unblocks any goroutine waiting in Pop. A closed queue still drains
// whatever it holds before Pop starts returning ok=false; it accepts no
// further Push calls.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
}

// Len reports how many entries the queue currently holds.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dq.Len()
}
