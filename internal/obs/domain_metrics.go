package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CSRFRejectionsTotal counts rejected state-changing requests by reason.
	CSRFRejectionsTotal *prometheus.CounterVec
	// LeadSubmissionsTotal counts lead form outcomes by form kind.
	LeadSubmissionsTotal *prometheus.CounterVec
	// LeadNotificationsTotal counts notification task outcomes.
	LeadNotificationsTotal *prometheus.CounterVec
	// CacheLookupsTotal counts Redis cache hits and misses per cache name.
	CacheLookupsTotal *prometheus.CounterVec
	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CSRFRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_rejections_total",
			Help:      "Count of requests rejected by CSRF verification.",
		}, []string{"reason"})
		LeadSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Count of lead form submissions by outcome.",
		}, []string{"kind", "result"})
		LeadNotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_notifications_total",
			Help:      "Count of lead notification deliveries by outcome.",
		}, []string{"result"})
		CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of cache lookups by cache and result.",
		}, []string{"cache", "result"})
		RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Number of requests rejected by the rate limiter.",
		})

		mustRegisterCollector(reg, CSRFRejectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CSRFRejectionsTotal = v
			}
		})
		mustRegisterCollector(reg, LeadSubmissionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LeadSubmissionsTotal = v
			}
		})
		mustRegisterCollector(reg, LeadNotificationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LeadNotificationsTotal = v
			}
		})
		mustRegisterCollector(reg, CacheLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CacheLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, RateLimitedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				RateLimitedTotal = v
			}
		})
	})
}

// ObserveCSRFRejection is a nil-safe helper for call sites that run before registration.
func ObserveCSRFRejection(reason string) {
	if CSRFRejectionsTotal != nil {
		CSRFRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveLeadSubmission records a lead form outcome.
func ObserveLeadSubmission(kind, result string) {
	if LeadSubmissionsTotal != nil {
		LeadSubmissionsTotal.WithLabelValues(kind, result).Inc()
	}
}

// ObserveLeadNotification records a notification delivery outcome.
func ObserveLeadNotification(result string) {
	if LeadNotificationsTotal != nil {
		LeadNotificationsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(cache string, hit bool) {
	if CacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// ObserveRateLimited records a rejected request.
func ObserveRateLimited() {
	if RateLimitedTotal != nil {
		RateLimitedTotal.Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
