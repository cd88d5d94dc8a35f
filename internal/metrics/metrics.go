package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_llm_calls_total",
		Help: "LLM calls by purpose, model and outcome",
	}, []string{"purpose", "model", "outcome"}) // purpose=chat|route|summary|rag|extract outcome=success|failure

	llmCallDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_llm_call_duration_seconds",
		Help:    "Wall time of LLM calls by purpose and model",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"purpose", "model"})

	agentTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_agent_turns_total",
		Help: "Completed chat turns by routed agent",
	}, []string{"agent"})

	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_tool_calls_total",
		Help: "Tool executions by tool name and outcome",
	}, []string{"tool", "outcome"}) // outcome=success|failure|disabled

	speechSynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_speech_synthesis_total",
		Help: "Text-to-speech requests by outcome",
	}, []string{"outcome"})

	transcriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_transcriptions_total",
		Help: "Speech-to-text requests by outcome",
	}, []string{"outcome"})

	streamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_streams_active",
		Help: "Currently open response streams (SSE and websocket)",
	})

	httpRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status class",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "class"}) // class=2xx|3xx|4xx|5xx

	historyWindowTokens = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_history_window_tokens",
		Help: "Token count of the last assembled history window",
	})
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func ObserveLLMCall(purpose, model string, d time.Duration, err error) {
	llmCallsTotal.WithLabelValues(purpose, model, outcome(err)).Inc()
	llmCallDurationSeconds.WithLabelValues(purpose, model).Observe(d.Seconds())
}

func IncAgentTurn(agent string)          { agentTurnsTotal.WithLabelValues(agent).Inc() }
func IncToolCall(tool string, err error) { toolCallsTotal.WithLabelValues(tool, outcome(err)).Inc() }
func IncToolDisabled(tool string)        { toolCallsTotal.WithLabelValues(tool, "disabled").Inc() }
func IncSynthesis(err error)             { speechSynthesisTotal.WithLabelValues(outcome(err)).Inc() }
func IncTranscription(err error)         { transcriptionsTotal.WithLabelValues(outcome(err)).Inc() }

func StreamOpened() { streamsActive.Inc() }
func StreamClosed() { streamsActive.Dec() }

func ObserveHTTPRequest(route string, status int, d time.Duration) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	httpRequestDurationSeconds.WithLabelValues(route, class).Observe(d.Seconds())
}

func RecordHistoryWindowTokens(n int) { historyWindowTokens.Set(float64(n)) }
