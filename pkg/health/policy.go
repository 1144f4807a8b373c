// Package health implements the per-feed health state machine and its persisting service.
package health

import (
	"errors"
	"fmt"
)

// Policy holds thresholds for health buckets and auto-disable.
// A feed is healthy when its success rate is at least HealthyMinRate and consecutive failures are
// below HealthyMaxFailures. Warning and degraded bands match when either of their conditions holds.
type Policy struct {
	HealthyMinRate      float64 // percent
	HealthyMaxFailures  int
	WarningMinRate      float64
	WarningMaxFailures  int
	DegradedMinRate     float64
	DegradedMaxFailures int
	AutoDisableAfter    int // consecutive failures, 0 disables auto-disable
	ErrorHistory        int // error entries kept per feed
}

// DefaultPolicy returns thresholds used when config doesn't override them
func DefaultPolicy() Policy {
	return Policy{
		HealthyMinRate:      95,
		HealthyMaxFailures:  3,
		WarningMinRate:      80,
		WarningMaxFailures:  5,
		DegradedMinRate:     50,
		DegradedMaxFailures: 10,
		AutoDisableAfter:    10,
		ErrorHistory:        20,
	}
}

// Validate checks bands are ordered from strict to loose
func (p Policy) Validate() error {
	var errs []error
	for name, rate := range map[string]float64{"healthy": p.HealthyMinRate, "warning": p.WarningMinRate, "degraded": p.DegradedMinRate} {
		if rate < 0 || rate > 100 {
			errs = append(errs, fmt.Errorf("%s min rate %.1f out of 0-100 range", name, rate))
		}
	}
	if p.HealthyMinRate < p.WarningMinRate || p.WarningMinRate < p.DegradedMinRate {
		errs = append(errs, errors.New("min rates must not increase from healthy to degraded"))
	}
	if p.HealthyMaxFailures < 1 {
		errs = append(errs, errors.New("healthy max failures must be positive"))
	}
	if p.HealthyMaxFailures > p.WarningMaxFailures || p.WarningMaxFailures > p.DegradedMaxFailures {
		errs = append(errs, errors.New("max failures must not decrease from healthy to degraded"))
	}
	if p.AutoDisableAfter < 0 {
		errs = append(errs, errors.New("auto disable threshold can't be negative"))
	}
	if p.ErrorHistory < 0 {
		errs = append(errs, errors.New("error history can't be negative"))
	}
	return errors.Join(errs...)
}
