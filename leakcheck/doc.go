// Package leakcheck surfaces unbalanced Retain/Release pairs in tests.
//
// A Tracker wraps any counted object and mirrors every capability call
// through to it while recording where each outstanding reference was
// acquired. At the end of a test, AssertBalanced fails with the acquisition
// stacks of whatever was never released.
package leakcheck
