// Package metrics exports device and update-step metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "rprop"

// Collector holds the Prometheus instruments. It implements device.Observer.
type Collector struct {
	Steps       *prometheus.CounterVec
	Selections  *prometheus.CounterVec
	FreeMemory  *prometheus.GaugeVec
	TotalMemory *prometheus.GaugeVec
	Loss        prometheus.Gauge
}

// NewCollector creates the instruments and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_steps_total",
			Help:      "Update kernel invocations.",
		}, []string{"kernel"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_selections_total",
			Help:      "Successful device selections.",
		}, []string{"platform", "device"}),
		FreeMemory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_free_bytes",
			Help:      "Free device memory at the last query.",
		}, []string{"platform", "device"}),
		TotalMemory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_total_bytes",
			Help:      "Total device memory.",
		}, []string{"platform", "device"}),
		Loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_loss",
			Help:      "Objective value after the last training step.",
		}),
	}
	reg.MustRegister(c.Steps, c.Selections, c.FreeMemory, c.TotalMemory, c.Loss)
	return c
}

// DeviceSelected counts a device selection.
func (c *Collector) DeviceSelected(platform string, index int) {
	c.Selections.WithLabelValues(platform, strconv.Itoa(index)).Inc()
}

// MemoryObserved records the latest memory counters of a device.
func (c *Collector) MemoryObserved(platform string, index int, free, total uint64) {
	dev := strconv.Itoa(index)
	c.FreeMemory.WithLabelValues(platform, dev).Set(float64(free))
	c.TotalMemory.WithLabelValues(platform, dev).Set(float64(total))
}

// StepDone counts one invocation of kernel.
func (c *Collector) StepDone(kernel string) {
	c.Steps.WithLabelValues(kernel).Inc()
}

// LossObserved records the objective after a training step.
func (c *Collector) LossObserved(loss float64) {
	c.Loss.Set(loss)
}

// Serve exposes the registry on addr under /metrics. The returned server is
// already listening; shut it down with Close or Shutdown.
func Serve(addr string, gatherer prometheus.Gatherer, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
