package records

import (
	"fmt"
	"iter"
	"slices"
)

// Record is implemented by every type a Store can hold.
type Record[T any] interface {
	RecordID() string
	RecordStatus() Status
	WithStatus(Status) T
}

// Filter selects records by status. FilterAll matches everything.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = Filter(StatusPending)
	FilterCompleted Filter = Filter(StatusCompleted)
)

// StatusFilter returns a filter matching exactly s.
func StatusFilter(s Status) Filter { return Filter(s) }

func (f Filter) Match(s Status) bool {
	return f == FilterAll || Status(f) == s
}

// Store holds an ordered collection of records. Every successful update swaps
// in a new backing slice; slices handed out by Items are never written to.
// A Store has a single writer (the UI loop) and does no locking.
type Store[T Record[T]] struct {
	lifecycle Lifecycle
	items     []T
}

func NewStore[T Record[T]](lifecycle Lifecycle, items ...T) *Store[T] {
	return &Store[T]{lifecycle: lifecycle, items: slices.Clone(items)}
}

func (s *Store[T]) Lifecycle() Lifecycle { return s.lifecycle }

// List returns a lazy, order-preserving view of the records matching f. The
// sequence reads the collection current at the time it is ranged over, so it
// can be iterated again after a mutation.
func (s *Store[T]) List(f Filter) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, it := range s.items {
			if !f.Match(it.RecordStatus()) {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

func (s *Store[T]) Items(f Filter) []T {
	return slices.Collect(s.List(f))
}

func (s *Store[T]) Get(id string) (T, bool) {
	i := s.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Replace swaps the whole collection, e.g. after the host reloads its source.
func (s *Store[T]) Replace(items []T) {
	s.items = slices.Clone(items)
}

// SetStatus moves the record with the given id to status. Setting the status
// a record already has is a no-op, terminal statuses included.
func (s *Store[T]) SetStatus(id string, status Status) error {
	i := s.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	cur := s.items[i].RecordStatus()
	if cur == status {
		return nil
	}
	if !s.lifecycle.Allows(cur, status) {
		return fmt.Errorf("%w: %s %s cannot move from %s to %s", ErrInvalidTransition, s.lifecycle.Name(), id, cur, status)
	}
	next := slices.Clone(s.items)
	next[i] = next[i].WithStatus(status)
	s.items = next
	return nil
}

func (s *Store[T]) Count(f Filter) int {
	n := 0
	for range s.List(f) {
		n++
	}
	return n
}

func (s *Store[T]) PendingCount() int   { return s.Count(FilterPending) }
func (s *Store[T]) CompletedCount() int { return s.Count(FilterCompleted) }
func (s *Store[T]) TotalCount() int     { return s.Count(FilterAll) }

func (s *Store[T]) index(id string) int {
	return slices.IndexFunc(s.items, func(it T) bool { return it.RecordID() == id })
}
