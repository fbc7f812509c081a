package optim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/rprop/internal/optim"
	"github.com/born-ml/rprop/internal/parallel"
	"github.com/born-ml/rprop/internal/tensor"
)

func TestSign(t *testing.T) {
	assert.Equal(t, float32(1), optim.Sign[float32](0.5))
	assert.Equal(t, float32(-1), optim.Sign[float32](-3))
	assert.Equal(t, float32(0), optim.Sign[float32](0))
	assert.Equal(t, float64(0), optim.Sign(math.Copysign(0, -1)))
	assert.Equal(t, float64(0), optim.Sign(math.NaN()))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		grad, prev float64
		want       optim.Decision
	}{
		{0.5, 0.5, optim.Grow},
		{-2, -0.1, optim.Grow},
		{-0.5, 0.5, optim.Shrink},
		{3, -1, optim.Shrink},
		{0, 0.5, optim.Hold},
		{0.5, 0, optim.Hold},
		{0, 0, optim.Hold},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, optim.Decide(tt.grad, tt.prev), "Decide(%v, %v)", tt.grad, tt.prev)
	}
	assert.Equal(t, "grow", optim.Grow.String())
	assert.Equal(t, "shrink", optim.Shrink.String())
	assert.Equal(t, "hold", optim.Hold.String())
}

func TestWeightDecayStep_NoDecay(t *testing.T) {
	w := tensor.Slice[float64]{1, -2, 3, 0}
	dw := tensor.Slice[float64]{0.5, 0.5, -1, 2}

	optim.WeightDecayStep[float64](w, dw, 0.1, 0)

	assert.InDeltaSlice(t, []float64{1.05, -1.95, 2.9, 0.2}, []float64(w), 1e-12)
	assert.Equal(t, tensor.Slice[float64]{0.5, 0.5, -1, 2}, dw, "dW must be read-only")
}

func TestWeightDecayStep_WithDecay(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 257
	w := make(tensor.Slice[float64], n)
	dw := make(tensor.Slice[float64], n)
	for i := range n {
		w[i] = rng.NormFloat64()
		dw[i] = rng.NormFloat64()
	}
	orig := append([]float64(nil), w...)
	lr, decay := 0.05, 0.3

	optim.WeightDecayStep[float64](w, dw, lr, decay)

	for i := range n {
		want := (1-decay*lr)*orig[i] + lr*dw[i]
		assert.InDelta(t, want, w[i], 1e-12, "element %d", i)
	}
}

func TestWeightDecayStep_Float32(t *testing.T) {
	w := tensor.Slice[float32]{2}
	dw := tensor.Slice[float32]{-1}

	optim.WeightDecayStep[float32](w, dw, 0.1, 0.5)

	// (1 - 0.05) * 2 + 0.1 * -1 = 1.8
	assert.InDelta(t, 1.8, w[0], 1e-6)
}

func TestWeightDecayStep_LengthMismatch(t *testing.T) {
	w := tensor.Slice[float64]{1, 2, 3}
	dw := tensor.Slice[float64]{1, 2}

	assertPrecondition(t, func() {
		optim.WeightDecayStep[float64](w, dw, 0.1, 0)
	})
	assert.Equal(t, tensor.Slice[float64]{1, 2, 3}, w)
	assert.Equal(t, tensor.Slice[float64]{1, 2}, dw)
}

func TestRPROP_GrowScenario(t *testing.T) {
	w := tensor.Slice[float64]{1.0}
	dw := tensor.Slice[float64]{0.5}
	old := tensor.Slice[float64]{0.5}
	rate := tensor.Slice[float64]{0.1}

	optim.RPROP[float64](w, dw, old, rate, 0)

	assert.InDelta(t, 0.12, rate[0], 1e-12)
	assert.InDelta(t, 1.12, w[0], 1e-12)
	assert.Equal(t, 0.5, old[0])
}

func TestRPROP_ShrinkScenario(t *testing.T) {
	w := tensor.Slice[float64]{1.0}
	dw := tensor.Slice[float64]{-0.5}
	old := tensor.Slice[float64]{0.5}
	rate := tensor.Slice[float64]{0.1}

	optim.RPROP[float64](w, dw, old, rate, 0)

	assert.InDelta(t, 0.05, rate[0], 1e-12)
	assert.Equal(t, 1.0, w[0], "W must not move after a sign flip")
	assert.Equal(t, -0.5, old[0])
	assert.Equal(t, -0.5, dw[0])
}

func TestRPROP_HoldScenario(t *testing.T) {
	w := tensor.Slice[float32]{1, 1}
	dw := tensor.Slice[float32]{-0.25, 0}
	old := tensor.Slice[float32]{0, 0.7}
	rate := tensor.Slice[float32]{0.1, 0.1}

	optim.RPROP[float32](w, dw, old, rate, 0)

	assert.Equal(t, []float32{0.1, 0.1}, []float32(rate))
	// First element moves by -rate; the zero gradient does not move the second.
	assert.InDelta(t, 0.9, w[0], 1e-6)
	assert.Equal(t, float32(1), w[1])
	assert.Equal(t, []float32{-0.25, 0}, []float32(old))
}

func TestRPROP_Decay(t *testing.T) {
	w := tensor.Slice[float64]{2}
	dw := tensor.Slice[float64]{1}
	old := tensor.Slice[float64]{1}
	rate := tensor.Slice[float64]{0.5}

	optim.RPROP[float64](w, dw, old, rate, 0.1)

	// rate -> 0.6; W = (1 - 0.1*0.6)*2 + 0.6 = 2.48
	assert.InDelta(t, 0.6, rate[0], 1e-12)
	assert.InDelta(t, 2.48, w[0], 1e-12)
}

func TestRPROP_LengthMismatch(t *testing.T) {
	w := tensor.Slice[float64]{1, 2}
	dw := tensor.Slice[float64]{1, 2}
	old := tensor.Slice[float64]{1, 2}
	rate := tensor.Slice[float64]{0.1, 0.1, 0.1}

	assertPrecondition(t, func() {
		optim.RPROP[float64](w, dw, old, rate, 0)
	})
	assert.Equal(t, tensor.Slice[float64]{1, 2}, w)
	assert.Equal(t, tensor.Slice[float64]{1, 2}, old)
	assert.Equal(t, tensor.Slice[float64]{0.1, 0.1, 0.1}, rate)
}

func TestRPROP_SameSignMonotone(t *testing.T) {
	cfg := optim.RPROPConfig{}.WithDefaults()
	w := tensor.Slice[float64]{0}
	old := tensor.Slice[float64]{0}
	rate := tensor.Slice[float64]{0.01}

	prevRate := rate[0]
	for k := range 60 {
		dw := tensor.Slice[float64]{0.3 + float64(k)}
		optim.RPROP[float64](w, dw, old, rate, 0)
		assert.GreaterOrEqual(t, rate[0], prevRate, "step %d", k)
		assert.LessOrEqual(t, rate[0], cfg.RateMax)
		prevRate = rate[0]
	}
	assert.Equal(t, cfg.RateMax, rate[0], "rate should saturate at the upper clamp")
}

func TestRPROP_AlternatingMonotone(t *testing.T) {
	cfg := optim.RPROPConfig{}.WithDefaults()
	w := tensor.Slice[float64]{5}
	old := tensor.Slice[float64]{1}
	rate := tensor.Slice[float64]{1}

	prevRate := rate[0]
	for k := range 40 {
		g := 1.0
		if k%2 == 0 {
			g = -1
		}
		optim.RPROP[float64](w, tensor.Slice[float64]{g}, old, rate, 0)
		assert.LessOrEqual(t, rate[0], prevRate, "step %d", k)
		assert.GreaterOrEqual(t, rate[0], cfg.RateMin)
		prevRate = rate[0]
	}
	assert.Equal(t, cfg.RateMin, rate[0], "rate should saturate at the lower clamp")
	assert.Equal(t, 5.0, w[0], "every step flipped sign, so W never moved")
}

func TestRPROP_ClampBoundsAdversarial(t *testing.T) {
	cfg := optim.RPROPConfig{EtaPlus: 1.5, EtaMinus: 0.3, RateMin: 1e-3, RateMax: 2}
	k := optim.Kernels{Parallel: parallel.Sequential(), RPROP: cfg}

	rng := rand.New(rand.NewSource(7))
	const n = 64
	w := make(tensor.Slice[float64], n)
	old := make(tensor.Slice[float64], n)
	rate := make(tensor.Slice[float64], n)
	for i := range rate {
		rate[i] = cfg.RateMin + rng.Float64()*(cfg.RateMax-cfg.RateMin)
	}

	for step := range 500 {
		dw := make(tensor.Slice[float64], n)
		for i := range dw {
			switch rng.Intn(4) {
			case 0:
				dw[i] = 0
			case 1:
				dw[i] = -old[i]
			default:
				dw[i] = rng.NormFloat64()
			}
		}
		optim.RPROPWith[float64](k, w, dw, old, rate, 0.01)
		for i, r := range rate {
			require.GreaterOrEqual(t, r, cfg.RateMin, "step %d element %d", step, i)
			require.LessOrEqual(t, r, cfg.RateMax, "step %d element %d", step, i)
		}
	}
}

func TestRPROP_ClampsOutOfRangeRates(t *testing.T) {
	// Hold, Grow from zero, and Shrink from far above the upper bound.
	w := tensor.Slice[float64]{0, 0, 5}
	dw := tensor.Slice[float64]{1, 1, -1}
	old := tensor.Slice[float64]{0, 1, 1}
	rate := tensor.Slice[float64]{100, 0, 1000}

	optim.RPROP[float64](w, dw, old, rate, 0)

	assert.InDeltaSlice(t, []float64{optim.DefaultRateMax, optim.DefaultRateMin, optim.DefaultRateMax}, []float64(rate), 1e-15)
	assert.InDeltaSlice(t, []float64{optim.DefaultRateMax, optim.DefaultRateMin, 5}, []float64(w), 1e-15)
}

func TestRPROP_StridedMatchesContiguous(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 33

	mk := func() []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		return v
	}
	w, dw, old := mk(), mk(), mk()
	rate := make([]float64, n)
	for i := range rate {
		rate[i] = 0.1
	}

	// Contiguous copy.
	cw := append(tensor.Slice[float64](nil), w...)
	cold := append(tensor.Slice[float64](nil), old...)
	crate := append(tensor.Slice[float64](nil), rate...)
	optim.RPROP[float64](cw, tensor.Slice[float64](dw), cold, crate, 0.01)

	// Strided copy: every value interleaved with padding.
	spread := func(v []float64) *tensor.Strided[float64] {
		buf := make([]float64, 2*n)
		for i, x := range v {
			buf[2*i+1] = x
		}
		s, err := tensor.NewStrided(buf, 1, 2, n)
		require.NoError(t, err)
		return s
	}
	sw, sold, srate := spread(w), spread(old), spread(rate)
	optim.RPROP[float64](sw, tensor.Slice[float64](dw), sold, srate, 0.01)

	assert.True(t, floats.EqualApprox(cw, tensor.ToSlice[float64](sw), 1e-12))
	assert.True(t, floats.EqualApprox(cold, tensor.ToSlice[float64](sold), 1e-12))
	assert.True(t, floats.EqualApprox(crate, tensor.ToSlice[float64](srate), 1e-12))
}

func TestKernels_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const n = 1 << 15

	base := func() []float32 {
		v := make([]float32, n)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		return v
	}
	w, dw, old := base(), base(), base()
	rate := make([]float32, n)
	for i := range rate {
		rate[i] = 0.05
	}

	par := optim.Kernels{Parallel: parallel.Config{Enabled: true, NumWorkers: 8, MinChunkSize: 512}}
	seq := optim.Kernels{Parallel: parallel.Sequential()}

	pw, pold, prate := clone32(w), clone32(old), clone32(rate)
	sw, sold, srate := clone32(w), clone32(old), clone32(rate)

	optim.RPROPWith[float32](par, pw, tensor.Slice[float32](dw), pold, prate, 0.001)
	optim.RPROPWith[float32](seq, sw, tensor.Slice[float32](dw), sold, srate, 0.001)
	assert.Equal(t, sw, pw)
	assert.Equal(t, sold, pold)
	assert.Equal(t, srate, prate)

	optim.WeightDecayStepWith[float32](par, pw, tensor.Slice[float32](dw), 0.01, 0.1)
	optim.WeightDecayStepWith[float32](seq, sw, tensor.Slice[float32](dw), 0.01, 0.1)
	assert.Equal(t, sw, pw)
}

func TestRPROPConfig(t *testing.T) {
	cfg := optim.RPROPConfig{}.WithDefaults()
	assert.Equal(t, 1.2, cfg.EtaPlus)
	assert.Equal(t, 0.5, cfg.EtaMinus)
	assert.Equal(t, 1e-6, cfg.RateMin)
	assert.Equal(t, 50.0, cfg.RateMax)
	require.NoError(t, cfg.Validate())

	assert.Error(t, optim.RPROPConfig{EtaPlus: 0.9}.Validate())
	assert.Error(t, optim.RPROPConfig{EtaMinus: 1.5}.Validate())
	assert.Error(t, optim.RPROPConfig{RateMin: 2, RateMax: 1}.Validate())
}

func TestMatrixWrappers(t *testing.T) {
	w := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	dw := mat.NewDense(2, 2, []float64{0.5, -0.5, 0, 0.5})
	old := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0})
	rate := mat.NewDense(2, 2, []float64{0.1, 0.1, 0.1, 0.1})

	optim.RPROPMatrix(tensor.Gonum(w), tensor.Gonum(dw), tensor.Gonum(old), tensor.Gonum(rate), 0)

	assert.InDeltaSlice(t, []float64{1.12, 1, 1, 1.1}, w.RawMatrix().Data, 1e-12)
	assert.InDeltaSlice(t, []float64{0.12, 0.05, 0.1, 0.1}, rate.RawMatrix().Data, 1e-12)
	assert.Equal(t, dw.RawMatrix().Data, old.RawMatrix().Data)

	optim.WeightDecayStepMatrix(tensor.Gonum(w), tensor.Gonum(dw), 0.1, 0)
	assert.InDelta(t, 1.17, w.At(0, 0), 1e-12)
}

func TestMatrixWrappers_DimsMismatch(t *testing.T) {
	// Same element count, different shape: still a precondition violation.
	w := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	dw := mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1})

	assertPrecondition(t, func() {
		optim.WeightDecayStepMatrix(tensor.Gonum(w), tensor.Gonum(dw), 0.1, 0)
	})
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, w.RawMatrix().Data)

	rate := mat.NewDense(2, 3, nil)
	assertPrecondition(t, func() {
		optim.RPROPMatrix(tensor.Gonum(w), tensor.Gonum(w), tensor.Gonum(w), tensor.Gonum(rate.Slice(0, 1, 0, 3).(*mat.Dense)), 0)
	})
}

func TestCheckLengths(t *testing.T) {
	require.NoError(t, optim.CheckLengths[float32]("op", tensor.Slice[float32]{1}, tensor.Slice[float32]{2}))

	err := optim.CheckLengths[float32]("op", tensor.Slice[float32]{1}, tensor.Slice[float32]{2, 3})
	var pe *optim.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{"1", "2"}, pe.Sizes)
	assert.Contains(t, err.Error(), "precondition")
}

func assertPrecondition(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a precondition panic")
		_, ok := r.(*optim.PreconditionError)
		assert.True(t, ok, "panic value should be *PreconditionError, got %T", r)
	}()
	f()
}

func clone32(v []float32) tensor.Slice[float32] {
	return append(tensor.Slice[float32](nil), v...)
}
