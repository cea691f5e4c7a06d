// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	UnderwritingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_decisions_total",
			Help: "Total underwriting decisions by outcome",
		},
		[]string{"decision"},
	)

	ConversationStageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_stage_transitions_total",
			Help: "Total conversation stage transitions",
		},
		[]string{"from_stage", "to_stage"},
	)

	KycVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_verifications_total",
			Help: "Total KYC verification attempts by status",
		},
		[]string{"status"},
	)

	GenAIFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genai_fallbacks_total",
			Help: "Total responses served from deterministic templates after a generation failure",
		},
	)

	RuleEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_evaluations_total",
			Help: "Total business rule set evaluations by decision",
		},
		[]string{"decision"},
	)

	SanctionLettersGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sanction_letters_generated_total",
			Help: "Total sanction letters generated",
		},
	)
)
