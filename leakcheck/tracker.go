package leakcheck

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	refptr "github.com/LerianStudio/lib-refptr"
)

// TestingT is the minimal testing surface AssertBalanced reports through.
// *testing.T satisfies it.
type TestingT interface {
	Errorf(format string, args ...any)
	Helper()
}

// maxReportedStacks caps how many acquisition stacks a single AssertBalanced
// failure prints.
const maxReportedStacks = 5

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for per-call debug output and
// double-release errors. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(tracker *Tracker) {
		tracker.logger = logger
	}
}

// WithLabel sets a human-readable label included in log output alongside the
// generated tracker id.
func WithLabel(label string) Option {
	return func(tracker *Tracker) {
		tracker.label = label
	}
}

// Tracker wraps a counted object and mirrors Retain/Release through to it
// while keeping the acquisition stack of every outstanding reference.
//
// Tracker itself satisfies refptr.Counted, so it drops into any call site
// that takes the capability, including refptr.Share:
//
//	tracker := leakcheck.New(conn)
//	ref := refptr.Share(tracker)
//	defer tracker.AssertBalanced(t)
//
// A Release with no outstanding reference is a double release: it is logged,
// remembered for AssertBalanced, and not forwarded to the wrapped object, so
// the tracked object's own count stays intact.
type Tracker struct {
	inner  refptr.Counted
	logger *zap.Logger
	id     string
	label  string

	mu             sync.Mutex
	sites          [][]byte
	doubleReleases int
}

// New returns a Tracker wrapping inner.
func New(inner refptr.Counted, opts ...Option) *Tracker {
	tracker := &Tracker{
		inner: inner,
		id:    uuid.NewString(),
	}

	for _, opt := range opts {
		opt(tracker)
	}

	return tracker
}

func (tracker *Tracker) log() *zap.Logger {
	if tracker == nil || tracker.logger == nil {
		return zap.NewNop()
	}

	return tracker.logger
}

// Retain forwards to the wrapped object and records the caller's stack as an
// outstanding acquisition.
func (tracker *Tracker) Retain() {
	tracker.inner.Retain()

	tracker.mu.Lock()
	tracker.sites = append(tracker.sites, debug.Stack())
	outstanding := len(tracker.sites)
	tracker.mu.Unlock()

	tracker.log().Debug("retain",
		zap.String("tracker_id", tracker.id),
		zap.String("label", tracker.label),
		zap.Int("outstanding", outstanding),
	)
}

// Release pops the most recent outstanding acquisition and forwards to the
// wrapped object. With no outstanding acquisition it records a double release
// instead of forwarding.
func (tracker *Tracker) Release() {
	tracker.mu.Lock()

	if len(tracker.sites) == 0 {
		tracker.doubleReleases++
		tracker.mu.Unlock()

		tracker.log().Error("release without outstanding retain",
			zap.String("tracker_id", tracker.id),
			zap.String("label", tracker.label),
			zap.String("stack", string(debug.Stack())),
		)

		return
	}

	tracker.sites = tracker.sites[:len(tracker.sites)-1]
	outstanding := len(tracker.sites)
	tracker.mu.Unlock()

	tracker.log().Debug("release",
		zap.String("tracker_id", tracker.id),
		zap.String("label", tracker.label),
		zap.Int("outstanding", outstanding),
	)

	tracker.inner.Release()
}

// Outstanding returns the number of retained references not yet released.
func (tracker *Tracker) Outstanding() int64 {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	return int64(len(tracker.sites))
}

// DoubleReleases returns the number of releases observed with no outstanding
// reference.
func (tracker *Tracker) DoubleReleases() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	return tracker.doubleReleases
}

// AssertBalanced fails the test if any reference is still outstanding or any
// double release was observed. Leaked references are reported with the stacks
// of their acquisition sites, newest first.
func (tracker *Tracker) AssertBalanced(tb TestingT) {
	tb.Helper()

	tracker.mu.Lock()
	leaked := len(tracker.sites)
	stacks := make([][]byte, 0, maxReportedStacks)

	for i := len(tracker.sites) - 1; i >= 0 && len(stacks) < maxReportedStacks; i-- {
		stacks = append(stacks, tracker.sites[i])
	}

	doubles := tracker.doubleReleases
	tracker.mu.Unlock()

	if leaked > 0 {
		tb.Errorf("leakcheck: tracker %s (%s): %d reference(s) never released", tracker.id, tracker.label, leaked)

		for _, stack := range stacks {
			tb.Errorf("leakcheck: acquired at:\n%s", stack)
		}
	}

	if doubles > 0 {
		tb.Errorf("leakcheck: tracker %s (%s): %d release(s) with no outstanding reference", tracker.id, tracker.label, doubles)
	}
}
