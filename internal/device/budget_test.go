package device

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetReserveRelease(t *testing.T) {
	b := NewBudget(1024)

	require.NoError(t, b.Reserve(256))
	assert.Equal(t, uint64(768), b.Free())
	assert.Equal(t, uint64(256), b.Used())

	b.Release(256)
	assert.Equal(t, uint64(1024), b.Free())
	assert.Equal(t, uint64(256), b.Peak())
}

func TestBudgetExhausted(t *testing.T) {
	b := NewBudget(100)
	require.NoError(t, b.Reserve(60))

	err := b.Reserve(41)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))

	var oom *OutOfMemoryError
	require.ErrorAs(t, err, &oom)
	assert.Equal(t, uint64(41), oom.Requested)
	assert.Equal(t, uint64(40), oom.Free)

	// Failed reservation leaves the budget unchanged.
	assert.Equal(t, uint64(40), b.Free())
}

func TestBudgetReleaseClamps(t *testing.T) {
	b := NewBudget(10)
	require.NoError(t, b.Reserve(5))
	b.Release(50)
	assert.Equal(t, uint64(0), b.Used())
	assert.Equal(t, uint64(10), b.Free())
}

func TestBudgetConcurrent(t *testing.T) {
	b := NewBudget(1 << 20)

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if err := b.Reserve(16); err == nil {
					b.Release(16)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(0), b.Used())
	assert.LessOrEqual(t, b.Free(), b.Total())
}

func TestContextZeroValue(t *testing.T) {
	var ctx Context
	assert.False(t, ctx.Valid())
	assert.Equal(t, "none", ctx.String())
	assert.ErrorIs(t, ctx.Reserve(1), ErrNoDevice)

	// Release on the zero context is a no-op.
	ctx.Release(1)
}

func TestContextReserve(t *testing.T) {
	b := NewBudget(8)
	ctx := NewContext(KindCPU, 0, b)

	assert.True(t, ctx.Valid())
	assert.Equal(t, "cpu:0", ctx.String())
	require.NoError(t, ctx.Reserve(8))
	assert.ErrorIs(t, ctx.Reserve(1), ErrOutOfMemory)
	ctx.Release(8)
	assert.Equal(t, uint64(8), b.Free())
}

func TestKindOf(t *testing.T) {
	for _, k := range []Kind{KindCPU, KindCUDA, KindWebGPU} {
		assert.Equal(t, k, KindOf(k.String()))
	}
	assert.Equal(t, KindNone, KindOf("tpu"))
}
