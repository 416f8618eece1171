package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// 独立 registry，避免和默认 registry 的 go/process 指标混在一起
	registry = prometheus.NewRegistry()

	generationAttempts = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_generation_attempts_total",
			Help: "Story generation attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	generationsFinished = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_generations_total",
			Help: "Finished story generations, partitioned by result.",
		},
		[]string{"result"},
	)
	modelCallDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_model_call_duration_seconds",
			Help:    "Latency of completion model calls.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"model", "status"},
	)
	modelTokens = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_model_tokens_total",
			Help: "Tokens consumed by completion model calls.",
		},
		[]string{"model", "type"},
	)
	storyNodes = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adventure_story_nodes",
			Help:    "Number of nodes in each persisted story.",
			Buckets: prometheus.LinearBuckets(2, 4, 10),
		},
	)
	jobsFinished = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_jobs_total",
			Help: "Story jobs reaching a terminal status.",
		},
		[]string{"status"},
	)
)

// 尝试结果标签
const (
	OutcomeSuccess       = "success"
	OutcomeModelError    = "model_error"
	OutcomeEmpty         = "empty_response"
	OutcomeMalformed     = "malformed_json"
	OutcomeSchema        = "schema_violation"
	ResultSucceeded      = "succeeded"
	ResultExhausted      = "exhausted"
	ResultPersistFailure = "persist_failed"
)

func RecordAttempt(outcome string) {
	generationAttempts.WithLabelValues(outcome).Inc()
}

func RecordGeneration(result string) {
	generationsFinished.WithLabelValues(result).Inc()
}

func RecordModelCall(model, status string, d time.Duration) {
	modelCallDuration.WithLabelValues(model, status).Observe(d.Seconds())
}

func RecordTokens(model string, prompt, completion int) {
	if prompt > 0 {
		modelTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		modelTokens.WithLabelValues(model, "completion").Add(float64(completion))
	}
}

func RecordStoryNodes(n int) {
	storyNodes.Observe(float64(n))
}

func RecordJob(status string) {
	jobsFinished.WithLabelValues(status).Inc()
}

// Registry 测试里读取指标用
func Registry() *prometheus.Registry {
	return registry
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
