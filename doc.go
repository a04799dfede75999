// Package refptr provides a scoped reference wrapper for intrusively
// reference-counted objects.
//
// A type is intrusively counted when it carries its own count and destruction
// logic and exposes them through Retain and Release methods. Ref manages one
// strong reference to such an object and issues the Retain/Release calls at the
// right moments, so call sites never balance the count by hand:
//
//	buf := pool.NewBuffer()           // *Buffer has Retain/Release
//	ref := refptr.Share(buf)          // count +1, ref owns the reference
//	defer ref.Reset()                 // count -1 when the scope ends
//
//	use(ref.Get())
//
// Ref never reads or stores the count itself; storage, atomicity, and the
// destroy-at-zero decision belong entirely to the wrapped type. The refcount
// subpackage provides an embeddable Counter for types that do not already have
// one, and the leakcheck subpackage wraps any counted object to surface
// unbalanced Retain/Release pairs in tests.
package refptr
