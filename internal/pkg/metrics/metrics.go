package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "far_compliance"

// Collector owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	UploadOutcomes     *prometheus.CounterVec
	ScanResults        *prometheus.CounterVec
	AdmissionDecisions *prometheus.CounterVec
	AnalysisJobs       *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		UploadOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_outcomes_total",
			Help:      "Files offered for upload by final outcome",
		}, []string{"outcome"}),
		ScanResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_scans_total",
			Help:      "Content scans by verdict and whether the bytes were readable",
		}, []string{"verdict", "indeterminate"}),
		AdmissionDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_decisions_total",
			Help:      "Usage admission checks by dimension and decision",
		}, []string{"dimension", "decision"}),
		AnalysisJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_jobs_total",
			Help:      "Analysis jobs by terminal status",
		}, []string{"status"}),
	}

	reg.MustRegister(c.UploadOutcomes, c.ScanResults, c.AdmissionDecisions, c.AnalysisJobs)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveAdmission(dimension string, allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	c.AdmissionDecisions.WithLabelValues(dimension, decision).Inc()
}

func (c *Collector) ObserveScan(safe, indeterminate bool) {
	verdict := "unsafe"
	if safe {
		verdict = "safe"
	}
	ind := "false"
	if indeterminate {
		ind = "true"
	}
	c.ScanResults.WithLabelValues(verdict, ind).Inc()
}
