package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pridkett/airsage2mqtt/gas"
)

type bridgeMetrics struct {
	registry      *prometheus.Registry
	ppm           *prometheus.GaugeVec
	aqi           *prometheus.GaugeVec
	gauge         *prometheus.GaugeVec
	overall       prometheus.Gauge
	readings      prometheus.Counter
	sourceErrors  *prometheus.CounterVec
	publishErrors *prometheus.CounterVec
}

func newBridgeMetrics() *bridgeMetrics {
	m := &bridgeMetrics{
		registry: prometheus.NewRegistry(),
		ppm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airsage_ppm",
			Help: "Latest calibrated concentration in ppm by pollutant.",
		}, []string{"pollutant"}),
		aqi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airsage_aqi",
			Help: "Latest AQI sub-index by pollutant.",
		}, []string{"pollutant"}),
		gauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airsage_gauge_fraction",
			Help: "Latest concentration as a fraction of the pollutant's gauge range.",
		}, []string{"pollutant"}),
		overall: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airsage_aqi_overall",
			Help: "Latest overall AQI.",
		}),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airsage_readings_total",
			Help: "Total readings processed.",
		}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airsage_source_errors_total",
			Help: "Readings that could not be fetched or decoded, by source.",
		}, []string{"source"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airsage_publish_errors_total",
			Help: "Failed publishes by target.",
		}, []string{"target"}),
	}

	m.registry.MustRegister(
		m.ppm,
		m.aqi,
		m.gauge,
		m.overall,
		m.readings,
		m.sourceErrors,
		m.publishErrors,
	)
	return m
}

func (m *bridgeMetrics) observe(status *airSageStatus) {
	m.readings.Inc()
	m.overall.Set(float64(status.AQI))
	for p, v := range status.subIndices() {
		m.aqi.WithLabelValues(p.String()).Set(float64(v))
	}

	// channels that went missing must not keep reporting a stale value
	m.ppm.Reset()
	m.gauge.Reset()
	for p, v := range status.concentrations() {
		m.ppm.WithLabelValues(p.String()).Set(v)
		if t, ok := gas.ThresholdsFor(p); ok {
			m.gauge.WithLabelValues(p.String()).Set(t.Fraction(v))
		}
	}
}

func newRouter(b *bridge) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/api/aqi", latestHandler(b)).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(b.metrics.registry, promhttp.HandlerOpts{})).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func latestHandler(b *bridge) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := b.Latest()
		if status == nil {
			http.Error(w, "no reading yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.Errorf("Encoding status: %v", err)
		}
	}
}
