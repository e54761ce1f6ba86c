package processing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedQueue_PushPop(t *testing.T) {
	q := NewBoundedQueue[int](3)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	require.Equal(t, 3, q.Len())

	v, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.PopFront()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 1, q.Len())
}

func TestBoundedQueue_PopEmpty(t *testing.T) {
	q := NewBoundedQueue[int](10)

	// Пустая очередь — не ошибка, а "данных пока нет"
	v, ok := q.PopFront()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestBoundedQueue_EvictsOldestWhenFull(t *testing.T) {
	q := NewBoundedQueue[int](QueueCapacity)

	// 1001 элемент в очередь ёмкостью 1000: самый старый вытесняется
	for i := 0; i <= QueueCapacity; i++ {
		q.Push(i)
	}

	require.Equal(t, QueueCapacity, q.Len())

	v, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, 1, v, "элемент 0 должен быть вытеснен")
}

func TestBoundedQueue_LatestNewestFirst(t *testing.T) {
	q := NewBoundedQueue[int](5)
	for i := 1; i <= 5; i++ {
		q.Push(i)
	}

	latest := q.Latest(3)
	assert.Equal(t, []int{5, 4, 3}, latest)

	// Запрос больше размера очереди возвращает всё содержимое
	all := q.Latest(100)
	assert.Len(t, all, 5)
	assert.Equal(t, 5, all[0])
	assert.Equal(t, 1, all[4])
}

func TestBoundedQueue_ConcurrentPush(t *testing.T) {
	q := NewBoundedQueue[int](QueueCapacity)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	// 4000 вставок в очередь ёмкостью 1000: размер не превышает ёмкость
	assert.Equal(t, QueueCapacity, q.Len())
}
