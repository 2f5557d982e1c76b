// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// collector holds the server's Prometheus metrics.
type collector struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	logins   *prometheus.CounterVec
	reports  prometheus.Gauge
}

func newCollector(reg prometheus.Registerer) *collector {
	c := &collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftlog_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftlog_http_request_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftlog_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		reports: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shiftlog_reports_stored",
			Help: "Reports currently stored.",
		}),
	}
	reg.MustRegister(c.requests, c.latency, c.logins, c.reports)
	return c
}

func (c *collector) recordRequest(method string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(d.Seconds())
}

func (c *collector) recordLogin(ok bool) {
	if ok {
		c.logins.WithLabelValues("success").Inc()
		return
	}
	c.logins.WithLabelValues("failure").Inc()
}
