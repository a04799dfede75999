// Package refcount provides an embeddable atomic reference counter.
//
// Embed a Counter in any struct to make its pointer type satisfy
// refptr.Counted without inheriting from a base type; the promoted Retain and
// Release methods carry the count, and an optional free hook runs exactly once
// when the count reaches zero.
package refcount
