package memory

// table keeps rows by id and remembers insertion order. Rows are stored and
// returned by value so callers never share memory with the table.
type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) insert(id string, row T) bool {
	if _, exists := t.rows[id]; exists {
		return false
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return true
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row T) bool {
	if _, exists := t.rows[id]; !exists {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, exists := t.rows[id]; !exists {
		return false
	}
	delete(t.rows, id)
	for i, key := range t.order {
		if key == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) removeWhere(match func(T) bool) int {
	kept := make([]string, 0, len(t.order))
	removed := 0
	for _, id := range t.order {
		if match(t.rows[id]) {
			delete(t.rows, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}

func (t *table[T]) list(match func(T) bool) []T {
	out := make([]T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		order: append([]string(nil), t.order...),
		rows:  make(map[string]T, len(t.rows)),
	}
	for id, row := range t.rows {
		c.rows[id] = row
	}
	return c
}
