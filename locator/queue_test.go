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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushPopPreservesOrder(t *testing.T) {
	q := NewQueue(4)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	assert.Equal(t, 2, q.Len())

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue(4)

	done := make(chan interface{}, 1)
	go func() {
		v, ok := q.Pop()
		if ok {
			done <- v
		} else {
			done <- nil
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push("late")

	select {
	case v := <-done:
		assert.Equal(t, "late", v)
	case <-time.After(time.Second):
		t.Fatal("pop never unblocked")
	}
}

func TestQueueCloseUnblocksWaitingPop(t *testing.T) {
	q := NewQueue(4)

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("pop never unblocked after close")
	}
}

func TestQueueClosedPushIsNoOp(t *testing.T) {
	q := NewQueue(4)
	q.Close()
	q.Push(1)
	assert.Equal(t, 0, q.Len())
}
