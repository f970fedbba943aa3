package records

// Collection is an immutable ordered sequence of records. Every change
// returns a new Collection backed by a new array, so earlier snapshots
// (and slices handed to renderers) never change underneath their holders.
type Collection[R Record] struct {
	items []R
}

// NewCollection wraps items in server order. The slice is copied.
func NewCollection[R Record](items []R) Collection[R] {
	if len(items) == 0 {
		return Collection[R]{}
	}
	cp := make([]R, len(items))
	copy(cp, items)
	return Collection[R]{items: cp}
}

// Items returns the records in order. Callers must not modify the slice.
func (c Collection[R]) Items() []R { return c.items }

// Len returns the number of records.
func (c Collection[R]) Len() int { return len(c.items) }

// Index returns the position of the record with id, or -1.
func (c Collection[R]) Index(id string) int {
	for i, r := range c.items {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

// Find returns the record with id.
func (c Collection[R]) Find(id string) (R, bool) {
	if i := c.Index(id); i >= 0 {
		return c.items[i], true
	}
	var zero R
	return zero, false
}

// Append adds r at the end. If a record with the same identifier already
// exists it is replaced in place instead and ok is false, so the collection
// never holds duplicate identifiers.
func (c Collection[R]) Append(r R) (next Collection[R], ok bool) {
	if i := c.Index(r.RecordID()); i >= 0 {
		return c.replaceAt(i, r), false
	}
	out := make([]R, len(c.items), len(c.items)+1)
	copy(out, c.items)
	return Collection[R]{items: append(out, r)}, true
}

// Replace swaps the record sharing r's identifier for r, keeping its
// position. ok is false and c is returned unchanged when nothing matches.
func (c Collection[R]) Replace(r R) (next Collection[R], ok bool) {
	i := c.Index(r.RecordID())
	if i < 0 {
		return c, false
	}
	return c.replaceAt(i, r), true
}

// Remove drops the record with id. ok is false when nothing matches.
func (c Collection[R]) Remove(id string) (next Collection[R], ok bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	out := make([]R, 0, len(c.items)-1)
	out = append(out, c.items[:i]...)
	out = append(out, c.items[i+1:]...)
	return Collection[R]{items: out}, true
}

func (c Collection[R]) replaceAt(i int, r R) Collection[R] {
	out := make([]R, len(c.items))
	copy(out, c.items)
	out[i] = r
	return Collection[R]{items: out}
}
