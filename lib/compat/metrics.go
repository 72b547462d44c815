package compat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compatibility_checks_total",
	Help: "Number of compatibility checks performed",
}, []string{"policy"})

var checksPassed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compatibility_checks_passed",
	Help: "Number of compatibility checks that found the schemas compatible",
}, []string{"policy"})

var checksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compatibility_checks_failed",
	Help: "Number of compatibility checks that found the schemas incompatible",
}, []string{"policy"})

func observe(r Result) {
	policy := r.Policy.String()
	checksTotal.WithLabelValues(policy).Inc()
	if r.Compatible {
		checksPassed.WithLabelValues(policy).Inc()
	} else {
		checksFailed.WithLabelValues(policy).Inc()
	}
}
