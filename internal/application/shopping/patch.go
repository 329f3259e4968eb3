package shopping

// patchState tags the three possible intents of an optional field update.
type patchState int8

const (
	patchUnchanged patchState = iota
	patchCleared
	patchSet
)

// Patch is a tri-state update for an optional field: leave it alone, clear
// it, or set a new value. The zero value means "leave it alone", so callers
// that omit a field get the safe behavior for free.
type Patch[T any] struct {
	state patchState
	value T
}

// Keep returns a patch that leaves the field untouched.
func Keep[T any]() Patch[T] {
	return Patch[T]{state: patchUnchanged}
}

// Clear returns a patch that removes the field's value.
func Clear[T any]() Patch[T] {
	return Patch[T]{state: patchCleared}
}

// Set returns a patch that assigns v to the field.
func Set[T any](v T) Patch[T] {
	return Patch[T]{state: patchSet, value: v}
}

// IsUnchanged reports whether the patch leaves the field alone.
func (p Patch[T]) IsUnchanged() bool {
	return p.state == patchUnchanged
}

// IsCleared reports whether the patch removes the field's value.
func (p Patch[T]) IsCleared() bool {
	return p.state == patchCleared
}

// Get returns the value to set. ok is false unless the patch carries one.
func (p Patch[T]) Get() (T, bool) {
	return p.value, p.state == patchSet
}

// Apply resolves the patch against the current pointer-valued field and
// returns the resulting pointer.
func (p Patch[T]) Apply(current *T) *T {
	switch p.state {
	case patchCleared:
		return nil
	case patchSet:
		v := p.value
		return &v
	default:
		return current
	}
}
