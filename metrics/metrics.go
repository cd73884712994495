// Package metrics exposes optional prometheus counters for the protocol's
// two hot-path events: instructions retired and dissection rounds played.
// A nil *Registry is valid everywhere one is accepted; every method is
// nil-safe so prover/verifier callers never need metrics wired up to run.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the counters this repo exports. The zero value is not
// usable; construct one with NewRegistry, or pass a nil *Registry to leave
// metrics disabled entirely.
type Registry struct {
	stepsExecuted    prometheus.Counter
	dissectionRounds prometheus.Counter
}

// NewRegistry builds a Registry and registers its counters against reg. If
// reg is nil, a private prometheus.NewRegistry() is used so the returned
// Registry still works standalone (e.g. in tests that don't care about
// scraping).
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Registry{
		stepsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "woss_steps_executed_total",
			Help: "Number of RISC-V instructions retired across all Machines driven by this process.",
		}),
		dissectionRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "woss_dissection_rounds_total",
			Help: "Number of dissection rounds played narrowing a disputed step range.",
		}),
	}
	reg.MustRegister(r.stepsExecuted, r.dissectionRounds)
	return r
}

// IncStepsExecuted records one retired instruction.
func (r *Registry) IncStepsExecuted() {
	if r == nil {
		return
	}
	r.stepsExecuted.Inc()
}

// IncDissectionRounds records one dissection round.
func (r *Registry) IncDissectionRounds() {
	if r == nil {
		return
	}
	r.dissectionRounds.Inc()
}
