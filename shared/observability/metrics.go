package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the persona generation pipeline, exposed on /metrics.
var (
	GenerationAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_generation_attempts_total",
		Help: "Number of generation requests issued to the completion endpoint, including retries",
	})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_generation_failures_total",
		Help: "Number of generation calls that exhausted their retry budget",
	})

	DebateRounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debate_rounds_total",
		Help: "Number of debate rounds dispatched",
	})

	DebatePersonaFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debate_persona_failures_total",
		Help: "Number of personas that failed to reply within a debate round",
	})

	SynthesesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debate_syntheses_total",
		Help: "Number of synthesis summaries requested",
	})
)
