//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/rprop/internal/optim"
)

// WeightDecayStep computes w = (1 - decay*lr)*w + lr*dw on the device.
// It panics with *optim.PreconditionError when the lengths differ.
func (b *Backend) WeightDecayStep(w, dw *Buffer, lr, decay float32) error {
	mustMatch("weight_decay_step", w, dw)

	params := make([]byte, 12)
	//nolint:gosec // G115: element counts fit in u32 below the dispatch limit
	binary.LittleEndian.PutUint32(params[0:], uint32(w.n))
	binary.LittleEndian.PutUint32(params[4:], math.Float32bits(lr))
	binary.LittleEndian.PutUint32(params[8:], math.Float32bits(decay))

	return b.dispatch("weight_decay_step", weightDecayShader, w.n, params, w, dw)
}

// RPROP applies one resilient-propagation step on the device with the same
// per-element rule as optim.RPROPWith. Zero fields of cfg take defaults.
// It panics with *optim.PreconditionError when the lengths differ.
func (b *Backend) RPROP(w, dw, dwOld, rate *Buffer, cfg optim.RPROPConfig, decay float32) error {
	mustMatch("rprop", w, dw, dwOld, rate)
	cfg = cfg.WithDefaults()

	params := make([]byte, 24)
	//nolint:gosec // G115: element counts fit in u32 below the dispatch limit
	binary.LittleEndian.PutUint32(params[0:], uint32(w.n))
	for i, v := range []float64{float64(decay), cfg.EtaPlus, cfg.EtaMinus, cfg.RateMin, cfg.RateMax} {
		binary.LittleEndian.PutUint32(params[4+4*i:], math.Float32bits(float32(v)))
	}

	return b.dispatch("rprop", rpropShader, w.n, params, w, dw, dwOld, rate)
}

func mustMatch(op string, bufs ...*Buffer) {
	for _, buf := range bufs[1:] {
		if buf.n != bufs[0].n {
			sizes := make([]string, len(bufs))
			for i, buf := range bufs {
				sizes[i] = fmt.Sprintf("%d", buf.n)
			}
			panic(&optim.PreconditionError{Op: op, Sizes: sizes})
		}
	}
}
