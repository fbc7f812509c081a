package metrics

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.DeviceSelected("cpu", 0)
	c.DeviceSelected("cpu", 0)
	c.MemoryObserved("cpu", 0, 512, 1024)
	c.StepDone("rprop")
	c.LossObserved(0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Selections.WithLabelValues("cpu", "0")))
	assert.Equal(t, 512.0, testutil.ToFloat64(c.FreeMemory.WithLabelValues("cpu", "0")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.TotalMemory.WithLabelValues("cpu", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Steps.WithLabelValues("rprop")))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.Loss))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCollectorDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.StepDone("sgd")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := Serve(addr, reg, zerolog.Nop())
	defer srv.Close()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, string(body), `rprop_update_steps_total{kernel="sgd"} 1`)
}
