package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is compact slice-backed storage with 1-based indices; index 0 is
// reserved as the invalid handle.
type Arena[T any] struct {
	data []T
}

// NewArena allocates an arena with a capacity hint; zero is allowed.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate stores value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	idx, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return idx
}

// Get returns a pointer to the stored element, or nil for the zero index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// Len reports the number of allocated elements.
func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data))
}
