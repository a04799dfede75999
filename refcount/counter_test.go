//go:build unit

package refcount

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRetainRelease(t *testing.T) {
	t.Parallel()

	freed := 0
	counter := New(func() { freed++ })

	counter.Retain()
	counter.Retain()
	assert.EqualValues(t, 2, counter.Refs())

	counter.Release()
	assert.EqualValues(t, 1, counter.Refs())
	assert.Zero(t, freed)

	counter.Release()
	assert.EqualValues(t, 0, counter.Refs())
	assert.Equal(t, 1, freed)
}

func TestCounterFreeHookRunsOnce(t *testing.T) {
	t.Parallel()

	freed := 0
	counter := New(func() { freed++ })

	counter.Retain()
	counter.Release()

	require.Equal(t, 1, freed)
	assert.Panics(t, func() { counter.Release() })
	assert.Equal(t, 1, freed)
}

func TestCounterNilFreeHook(t *testing.T) {
	t.Parallel()

	counter := New(nil)

	counter.Retain()
	assert.NotPanics(t, func() { counter.Release() })
	assert.EqualValues(t, 0, counter.Refs())
}

func TestCounterMisuse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		usage func(counter *Counter)
	}{
		{
			name: "release without retain",
			usage: func(counter *Counter) {
				counter.Release()
			},
		},
		{
			name: "retain after freed",
			usage: func(counter *Counter) {
				counter.Retain()
				counter.Release()
				counter.Retain()
			},
		},
		{
			name: "release after freed",
			usage: func(counter *Counter) {
				counter.Retain()
				counter.Release()
				counter.Release()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			counter := New(nil)
			assert.Panics(t, func() { tt.usage(counter) })
		})
	}
}

func TestCounterEmbedding(t *testing.T) {
	t.Parallel()

	type session struct {
		Counter
		closed bool
	}

	s := &session{}
	s.SetFree(func() { s.closed = true })

	s.Retain()
	s.Retain()
	s.Release()
	assert.False(t, s.closed)

	s.Release()
	assert.True(t, s.closed)
}

func TestCounterConcurrentBalance(t *testing.T) {
	t.Parallel()

	const goroutines = 32

	const rounds = 200

	freed := 0
	counter := New(func() { freed++ })
	counter.Retain()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < rounds; i++ {
				counter.Retain()
				counter.Release()
			}
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, counter.Refs())
	assert.Zero(t, freed)

	counter.Release()
	assert.Equal(t, 1, freed)
}
