// Package metrics exposes prometheus instrumentation for the audit
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seo_audit_audits_started_total",
		Help: "Number of audits started.",
	})

	AuditsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seo_audit_audits_completed_total",
		Help: "Number of audits completed successfully.",
	})

	AuditsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seo_audit_audits_failed_total",
		Help: "Number of audits that failed.",
	})

	PagesCrawled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seo_audit_pages_crawled_total",
		Help: "Number of pages fetched by the crawler across all audits.",
	})

	AuditDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seo_audit_audit_duration_seconds",
		Help:    "End-to-end audit duration.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~17m
	})
)
