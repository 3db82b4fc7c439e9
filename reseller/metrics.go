package reseller

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/a2n2k3p4/topup-gateway/models"
)

const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeMissingURL  = "missing_url"
	outcomeUnavailable = "unavailable"
	outcomeTimeout     = "timeout"
	outcomeMalformed   = "malformed"
)

var (
	chargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "topup",
		Subsystem: "reseller",
		Name:      "charges_total",
		Help:      "Reseller charge calls by charge type and outcome.",
	}, []string{"charge_type", "outcome"})

	chargeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "topup",
		Subsystem: "reseller",
		Name:      "charge_duration_seconds",
		Help:      "Time spent waiting for the reseller.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"charge_type"})
)

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		if rejected.MissingURL {
			return outcomeMissingURL
		}
		return outcomeRejected
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		switch {
		case unavailable.Timeout:
			return outcomeTimeout
		case unavailable.Malformed:
			return outcomeMalformed
		}
	}
	return outcomeUnavailable
}

func observe(chargeType models.ChargeType, err error, took time.Duration) {
	chargesTotal.WithLabelValues(string(chargeType), outcome(err)).Inc()
	chargeDuration.WithLabelValues(string(chargeType)).Observe(took.Seconds())
}
