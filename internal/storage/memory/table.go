package memory

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Table maps keys to records of one kind.
type Table[K cmp.Ordered, V any] struct {
	name   string
	items  map[K]V
	notify func(table string)
}

func newTable[K cmp.Ordered, V any](name string, notify func(string)) *Table[K, V] {
	return &Table[K, V]{
		name:   name,
		items:  make(map[K]V),
		notify: notify,
	}
}

// Name returns the table name used in the snapshot file.
func (t *Table[K, V]) Name() string {
	return t.name
}

// Get returns the record for key. Absent keys yield the zero value and false.
func (t *Table[K, V]) Get(key K) (V, bool) {
	v, ok := t.items[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.items[key]
	return ok
}

// Set stores value under key and notifies the mutation hook.
func (t *Table[K, V]) Set(key K, value V) {
	t.items[key] = value
	t.notify(t.name)
}

// Delete removes key. It reports whether the key was present; deleting an
// absent key is not a mutation.
func (t *Table[K, V]) Delete(key K) bool {
	if _, ok := t.items[key]; !ok {
		return false
	}
	delete(t.items, key)
	t.notify(t.name)
	return true
}

// Len returns the number of records.
func (t *Table[K, V]) Len() int {
	return len(t.items)
}

// Keys returns all keys in ascending order.
func (t *Table[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(t.items))
}

// Values returns all records ordered by key.
func (t *Table[K, V]) Values() []V {
	keys := t.Keys()
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.items[k])
	}
	return out
}

// All yields every record in key order. The sequence is lazy and can be
// ranged more than once; each range sees the table as it is when the
// range starts. Records removed during a range are skipped.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range t.Keys() {
			v, ok := t.items[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Replace swaps the whole table contents without notifying the hook.
// It is used when loading a snapshot.
func (t *Table[K, V]) Replace(items map[K]V) {
	if items == nil {
		items = make(map[K]V)
	}
	t.items = items
}

// Clone returns a shallow copy of the contents.
func (t *Table[K, V]) Clone() map[K]V {
	return maps.Clone(t.items)
}
