package memory

import (
	"sort"
	"sync"
)

// table — потокобезопасная карта записей с автоинкрементным идентификатором.
type table[T any] struct {
	mu     sync.RWMutex
	items  map[int64]T
	nextID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[int64]T)}
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	return item, ok
}

// insert выдаёт новый идентификатор и сохраняет запись, собранную build.
func (t *table[T]) insert(build func(id int64) T) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.items[t.nextID] = build(t.nextID)
	return t.nextID
}

// put сохраняет запись с заданным идентификатором, сдвигая счётчик при необходимости.
func (t *table[T]) put(id int64, item T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id > t.nextID {
		t.nextID = id
	}
	t.items[id] = item
}

func (t *table[T]) update(id int64, item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	t.items[id] = item
	return true
}

func (t *table[T]) delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	return true
}

// list возвращает записи, прошедшие фильтр, в порядке возрастания идентификатора.
func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int64, 0, len(t.items))
	for id, item := range t.items {
		if keep == nil || keep(item) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		result = append(result, t.items[id])
	}
	return result
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, item := range t.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
