package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/rprop/internal/device"
)

func testContext(total uint64) (device.Context, *device.Budget) {
	b := device.NewBudget(total)
	return device.NewContext(device.KindCPU, 0, b), b
}

func TestDataType(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "float64", Float64.String())
	assert.Equal(t, Float32, DataTypeOf[float32]())
	assert.Equal(t, Float64, DataTypeOf[float64]())

	type weight float32
	assert.Equal(t, Float32, DataTypeOf[weight]())
}

func TestShape(t *testing.T) {
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, "[2x3]", Shape{2, 3}.String())
	assert.Equal(t, "[]", Shape{}.String())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.Error(t, Shape{2, 0}.Validate())
}

func TestNewReservesBudget(t *testing.T) {
	ctx, b := testContext(1024)

	a, err := New[float32](ctx, Shape{4, 8})
	require.NoError(t, err)
	assert.Equal(t, 32, a.Len())
	assert.Equal(t, 128, a.ByteSize())
	assert.Equal(t, uint64(1024-128), b.Free())
	assert.Equal(t, make([]float32, 32), a.Data())

	a.Free()
	a.Free()
	assert.Equal(t, uint64(1024), b.Free())
}

func TestNewWithoutDevice(t *testing.T) {
	_, err := New[float32](device.Context{}, Shape{4})
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrNoDevice)
}

func TestNewOutOfMemory(t *testing.T) {
	ctx, b := testContext(64)

	_, err := New[float64](ctx, Shape{9})
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrOutOfMemory)
	assert.Equal(t, uint64(64), b.Free())
}

func TestFromSliceAndFull(t *testing.T) {
	ctx, _ := testContext(1 << 10)

	a, err := FromSlice(ctx, []float64{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data())

	_, err = FromSlice(ctx, []float64{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)

	f, err := Full[float32](ctx, Shape{3}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.1, 0.1}, f.Data())
}

func TestCloneIsIndependent(t *testing.T) {
	ctx, b := testContext(1 << 10)

	a, err := FromSlice(ctx, []float32{1, 2}, Shape{2})
	require.NoError(t, err)
	c, err := a.Clone()
	require.NoError(t, err)

	c.Set(0, 9)
	assert.Equal(t, float32(1), a.At(0))
	assert.Equal(t, uint64(1024-16), b.Free())
}

func TestReshapeSharesStorage(t *testing.T) {
	ctx, b := testContext(1 << 10)

	a, err := FromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, Shape{6})
	require.NoError(t, err)
	v, err := a.Reshape(Shape{2, 3})
	require.NoError(t, err)

	v.Set(5, 60)
	assert.Equal(t, float32(60), a.At(5))

	// Freeing a view does not release the owner's bytes.
	v.Free()
	assert.Equal(t, uint64(1024-24), b.Free())

	_, err = a.Reshape(Shape{4})
	assert.Error(t, err)
}

func TestReshapeKeepsContext(t *testing.T) {
	ctx, b := testContext(1 << 10)

	a, err := FromSlice(ctx, []float64{1, 2, 3, 4}, Shape{4})
	require.NoError(t, err)
	v, err := a.Reshape(Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, ctx, v.Context())

	c, err := v.Clone()
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4}, c.Data())
	assert.Equal(t, uint64(1024-64), b.Free())

	c.Free()
	a.Free()
	assert.Equal(t, uint64(1024), b.Free())
}

func TestStrided(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	s, err := NewStrided(data, 1, 2, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []float32{1, 3, 5, 7}, ToSlice[float32](s))

	s.Set(2, 50)
	assert.Equal(t, float32(50), data[5])

	_, err = NewStrided(data, 1, 2, 5)
	assert.Error(t, err)
	_, err = NewStrided(data, 0, 0, 2)
	assert.Error(t, err)
}

func TestCopyTo(t *testing.T) {
	dst := make(Slice[float64], 3)
	require.NoError(t, CopyTo[float64](dst, Slice[float64]{1, 2, 3}))
	assert.Equal(t, Slice[float64]{1, 2, 3}, dst)

	data := []float64{0, 0, 0, 0, 0, 0}
	s, err := NewStrided(data, 0, 2, 3)
	require.NoError(t, err)
	require.NoError(t, CopyTo[float64](s, Slice[float64]{7, 8, 9}))
	assert.Equal(t, []float64{7, 0, 8, 0, 9, 0}, data)

	assert.Error(t, CopyTo[float64](dst, Slice[float64]{1}))
}

func TestMatrices(t *testing.T) {
	ctx, _ := testContext(1 << 10)

	m, err := NewMatrix[float32](ctx, 2, 3)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6, m.Vec().Len())

	_, err = NewMat[float32](2, 2, Slice[float32]{1, 2, 3})
	assert.Error(t, err)
}

func TestPitched(t *testing.T) {
	// 2x2 matrix stored with a leading dimension of 3.
	data := []float64{1, 2, -1, 3, 4, -1}
	m, err := NewPitched(data, 2, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, ToSlice(m.Vec()))

	m.Vec().Set(3, 40)
	assert.Equal(t, float64(40), data[4])

	_, err = NewPitched(data, 3, 2, 3)
	assert.Error(t, err)
}

func TestGonum(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	m := Gonum(d)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, ToSlice(m.Vec()))

	// A column slice keeps the parent's stride.
	sub := d.Slice(0, 2, 1, 3).(*mat.Dense)
	sm := Gonum(sub)
	assert.Equal(t, []float64{2, 3, 5, 6}, ToSlice(sm.Vec()))

	sm.Vec().Set(0, 20)
	assert.Equal(t, float64(20), d.At(0, 1))
}
