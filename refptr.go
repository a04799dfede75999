package refptr

// Counted is the capability a managed target must expose.
//
// Retain adds one strong reference. Release removes one and, when the count
// reaches zero, destroys the object. Neither call reports failure; if an
// implementation panics, the panic propagates through Ref unmodified.
type Counted interface {
	Retain()
	Release()
}

// Countable constrains Ref type parameters to comparable Counted
// implementations. The comparable requirement is what lets Ref distinguish an
// empty wrapper from a held reference without ever inspecting the count;
// pointer types satisfy it naturally.
type Countable interface {
	comparable
	Counted
}

// Ref holds at most one strong reference to a counted object and releases it
// exactly once.
//
// The zero value is an empty wrapper and is ready to use. A non-empty Ref owns
// exactly one reference, which it surrenders when it is Reset, overwritten via
// Set, or handed on through Move, Take, or Detach. A Ref value must not be
// mutated concurrently; distinct Refs to the same object are as safe as the
// object's own Retain/Release implementation.
type Ref[T Countable] struct {
	target T
}

// Empty returns an empty wrapper. It is equivalent to the zero value and
// issues no capability calls; it exists for call sites where the type
// parameter cannot be inferred from an argument.
func Empty[T Countable]() Ref[T] {
	return Ref[T]{}
}

// Share wraps target and retains it, so the wrapper owns a reference
// independent of any the caller holds. Sharing a zero target yields an empty
// wrapper with no capability calls.
//
// Example:
//
//	ref := refptr.Share(conn)
//	defer ref.Reset()
func Share[T Countable](target T) Ref[T] {
	var zero T
	if target != zero {
		target.Retain()
	}

	return Ref[T]{target: target}
}

// Adopt wraps target without retaining it: the one outstanding reference the
// caller already holds is transferred into the wrapper. Use it to capture the
// result of Detach, or a reference handed over by an API that retains on the
// caller's behalf. Adopting a reference the caller does not own is a double
// release waiting to happen.
//
// Example:
//
//	raw := producer.Detach()
//	ref := refptr.Adopt(raw)
func Adopt[T Countable](target T) Ref[T] {
	return Ref[T]{target: target}
}

// Get returns the wrapped target, or the zero value if the wrapper is empty.
// Ownership does not transfer and the count is untouched.
func (ref *Ref[T]) Get() T {
	return ref.target
}

// MustGet returns the wrapped target and panics if the wrapper is empty.
func (ref *Ref[T]) MustGet() T {
	var zero T
	if ref.target == zero {
		panic("refptr: MustGet on empty Ref")
	}

	return ref.target
}

// IsEmpty reports whether the wrapper holds no reference.
func (ref *Ref[T]) IsEmpty() bool {
	var zero T

	return ref.target == zero
}

// Clone returns a new wrapper holding its own reference to the same target.
// The receiver is unchanged; cloning an empty wrapper yields an empty wrapper.
func (ref *Ref[T]) Clone() Ref[T] {
	return Share(ref.target)
}

// Move transfers the held reference into the returned wrapper, leaving the
// receiver empty. The count is untouched.
func (ref *Ref[T]) Move() Ref[T] {
	return Adopt(ref.Detach())
}

// Reset releases the held reference, if any, and leaves the wrapper empty.
// Resetting an empty wrapper is a no-op, so Reset is safe to call more than
// once and safe to defer unconditionally.
func (ref *Ref[T]) Reset() {
	var zero T
	if ref.target == zero {
		return
	}

	target := ref.target
	ref.target = zero
	target.Release()
}

// Detach returns the held target and leaves the wrapper empty without
// releasing. The caller becomes the owner of the one outstanding reference
// and must eventually call Release on it exactly once; forgetting it leaks,
// releasing twice is a double free.
//
// Example:
//
//	raw := ref.Detach()
//	// ref is now empty; raw must be released by its new owner
//	defer raw.Release()
func (ref *Ref[T]) Detach() T {
	target := ref.target

	var zero T

	ref.target = zero

	return target
}

// Set replaces the held reference with target, retaining the new target
// before releasing the old one. The ordering makes Set safe when target
// aliases the current reference: self-assignment never drops the sole
// reference to zero. Setting the zero value is equivalent to Reset.
func (ref *Ref[T]) Set(target T) {
	var zero T
	if target != zero {
		target.Retain()
	}

	old := ref.target
	ref.target = target

	if old != zero {
		old.Release()
	}
}

// SetRef makes the receiver hold its own reference to other's target,
// releasing whatever it held before. other is unchanged.
func (ref *Ref[T]) SetRef(other Ref[T]) {
	ref.Set(other.target)
}

// Take moves other's reference into the receiver: the receiver's old target
// is released exactly once, other becomes empty, and no redundant retains are
// issued. Taking from an empty wrapper is equivalent to Reset.
func (ref *Ref[T]) Take(other *Ref[T]) {
	moved := other.Move()
	ref.Swap(&moved)
	moved.Reset()
}

// SwapTarget exchanges the held target with the contents of slot. No
// capability calls are issued; ownership of whatever each side held follows
// the values.
func (ref *Ref[T]) SwapTarget(slot *T) {
	ref.target, *slot = *slot, ref.target
}

// Swap exchanges the held targets of two wrappers with no capability calls.
func (ref *Ref[T]) Swap(other *Ref[T]) {
	ref.SwapTarget(&other.target)
}

// Convert returns a wrapper of a related type holding its own reference to
// ref's target, converted through cast. Go type parameters are invariant, so
// the upcast a subtype relationship would provide elsewhere is expressed as an
// explicit conversion func. ref is unchanged; converting an empty wrapper
// yields an empty wrapper and cast is not called.
//
// Example:
//
//	base := refptr.Convert(derived, func(d *TCPConn) *Conn { return &d.Conn })
func Convert[To, From Countable](ref Ref[From], cast func(From) To) Ref[To] {
	var zero From
	if ref.target == zero {
		return Ref[To]{}
	}

	return Share(cast(ref.target))
}

// ConvertMove converts like Convert but steals ref's reference instead of
// retaining a new one: ref becomes empty and the count is untouched.
func ConvertMove[To, From Countable](ref *Ref[From], cast func(From) To) Ref[To] {
	var zero From
	if ref.target == zero {
		return Ref[To]{}
	}

	return Adopt(cast(ref.Detach()))
}
