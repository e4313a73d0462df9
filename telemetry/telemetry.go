// Package telemetry exports leadscrew controller state as Prometheus
// gauges, grounded on ptp/sptp/stats.PrometheusExporter's registry +
// promhttp wiring. It only reads the controller/global state; it never
// feeds anything back into control, matching spec.md §4.D.5's "UI only"
// velocity estimate.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/aliher1911/els/globalstate"
	"github.com/aliher1911/els/leadscrew"
)

// Exporter samples a Controller/State pair on its own slow ticker and
// serves /metrics over HTTP, isolated from the real-time control loop.
type Exporter struct {
	ctrl  *leadscrew.Controller
	state *globalstate.State

	registry *prometheus.Registry

	currentPosition  prometheus.Gauge
	expectedPosition prometheus.Gauge
	positionError    prometheus.Gauge
	pulseDelay       prometheus.Gauge
	velocityMMPerSec prometheus.Gauge
	modeTransitions  prometheus.Counter

	listen        string
	sampleEvery   time.Duration
	lastMode      globalstate.MotionMode
}

// NewExporter builds and registers all gauges/counters under a fresh
// registry, mirroring NewPrometheusExporter's self-contained registry.
func NewExporter(ctrl *leadscrew.Controller, state *globalstate.State, listen string, sampleEvery time.Duration) *Exporter {
	e := &Exporter{
		ctrl:        ctrl,
		state:       state,
		registry:    prometheus.NewRegistry(),
		listen:      listen,
		sampleEvery: sampleEvery,
		lastMode:    state.MotionMode(),
	}

	e.currentPosition = prometheus.NewGauge(prometheus.GaugeOpts{Name: "els_current_position", Help: "Leadscrew current commanded position, in steps."})
	e.expectedPosition = prometheus.NewGauge(prometheus.GaugeOpts{Name: "els_expected_position", Help: "Leadscrew expected position given lead axis and ratio, in steps."})
	e.positionError = prometheus.NewGauge(prometheus.GaugeOpts{Name: "els_position_error", Help: "Expected minus current position, in steps."})
	e.pulseDelay = prometheus.NewGauge(prometheus.GaugeOpts{Name: "els_current_pulse_delay_us", Help: "Current inter-pulse delay, in microseconds."})
	e.velocityMMPerSec = prometheus.NewGauge(prometheus.GaugeOpts{Name: "els_velocity_mm_per_second", Help: "Estimated leadscrew velocity, in mm/s."})
	e.modeTransitions = prometheus.NewCounter(prometheus.CounterOpts{Name: "els_mode_transitions_total", Help: "Count of observed motion mode transitions."})

	for _, c := range []prometheus.Collector{e.currentPosition, e.expectedPosition, e.positionError, e.pulseDelay, e.velocityMMPerSec, e.modeTransitions} {
		e.registry.MustRegister(c)
	}
	return e
}

// Run samples metrics on sampleEvery and serves HTTP until ctx is done.
func (e *Exporter) Run(ctx context.Context) error {
	go e.sampleLoop(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: e.listen, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Infof("telemetry: serving /metrics on %s", e.listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

func (e *Exporter) sampleLoop(ctx context.Context) {
	t := time.NewTicker(e.sampleEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.sample()
		}
	}
}

func (e *Exporter) sample() {
	e.currentPosition.Set(float64(e.ctrl.CurrentPosition()))
	e.expectedPosition.Set(float64(e.ctrl.ExpectedPosition()))
	e.positionError.Set(float64(e.ctrl.PositionError()))
	e.pulseDelay.Set(float64(e.ctrl.CurrentPulseDelay()))
	e.velocityMMPerSec.Set(float64(e.ctrl.EstimatedVelocityInMillimetersPerSecond()))

	if m := e.state.MotionMode(); m != e.lastMode {
		e.modeTransitions.Inc()
		e.lastMode = m
	}
}
