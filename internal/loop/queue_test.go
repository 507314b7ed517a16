package loop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()

	var got []int
	for i := 1; i <= 3; i++ {
		n := i
		require.True(t, q.Enqueue(func() { got = append(got, n) }))
	}

	for {
		f, ok := q.TryDequeue()
		if !ok {
			break
		}
		f()
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestTaskQueue_TryDequeue_Empty(t *testing.T) {
	q := newTaskQueue()
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestTaskQueue_Close(t *testing.T) {
	q := newTaskQueue()
	q.Enqueue(func() {})
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(func() {}), "enqueue after close fails")
	assert.Equal(t, 1, q.Len(), "queued tasks survive close")

	select {
	case <-q.Wait():
	default:
		t.Fatal("wait channel should be closed")
	}
}

func TestTaskQueue_SignalCoalesces(t *testing.T) {
	q := newTaskQueue()
	for i := 0; i < 5; i++ {
		q.Enqueue(func() {})
	}

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}
	assert.Equal(t, 5, q.Len())
}

func TestTaskQueue_ConcurrentEnqueue(t *testing.T) {
	q := newTaskQueue()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(func() {})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())
}
