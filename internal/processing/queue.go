package processing

import "sync"

// QueueCapacity ёмкость входной и выходной очередей конвейера
const QueueCapacity = 1000

// BoundedQueue потокобезопасная FIFO очередь фиксированной ёмкости.
// При переполнении молча вытесняет самый старый элемент —
// противодавление усечением, а не блокировкой.
type BoundedQueue[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	size     int
	capacity int
}

// NewBoundedQueue создаёт очередь заданной ёмкости
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &BoundedQueue[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Push добавляет элемент в хвост; при переполнении вытесняет голову
func (q *BoundedQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == q.capacity {
		q.head = (q.head + 1) % q.capacity
		q.size--
	}
	q.items[(q.head+q.size)%q.capacity] = item
	q.size++
}

// PopFront снимает самый старый элемент. Пустая очередь — не ошибка,
// а обычный результат "данных пока нет".
func (q *BoundedQueue[T]) PopFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % q.capacity
	q.size--
	return item, true
}

// Len возвращает текущее количество элементов
func (q *BoundedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Latest возвращает копию последних n элементов, самый свежий первым
func (q *BoundedQueue[T]) Latest(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > q.size {
		n = q.size
	}
	result := make([]T, 0, n)
	for i := 0; i < n; i++ {
		idx := (q.head + q.size - 1 - i) % q.capacity
		result = append(result, q.items[idx])
	}
	return result
}
