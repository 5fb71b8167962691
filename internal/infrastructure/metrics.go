package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"project_healthbot/internal/entities"
)

// MetricsCollector owns a private Prometheus registry with the bot's
// counters. It satisfies interfaces.Metrics.
type MetricsCollector struct {
	registry *prometheus.Registry

	Answers       *prometheus.CounterVec
	Deliveries    *prometheus.CounterVec
	Broadcasts    prometheus.Counter
	WebhookEvents *prometheus.CounterVec
	TasksDropped  prometheus.Counter
}

func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	mc := &MetricsCollector{
		registry: reg,
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "answers_total",
			Help:      "Answers produced by the resolution chain, by source stage.",
		}, []string{"source"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "deliveries_total",
			Help:      "Outbound delivery attempts, by channel and outcome.",
		}, []string{"channel", "status"}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "broadcasts_total",
			Help:      "Broadcasts recorded.",
		}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "webhook_events_total",
			Help:      "Inbound webhook events, by channel and outcome (accepted, incomplete, dropped).",
		}, []string{"channel", "outcome"}),
		TasksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "tasks_dropped_total",
			Help:      "Background tasks dropped because the queue was full.",
		}),
	}
	reg.MustRegister(mc.Answers, mc.Deliveries, mc.Broadcasts, mc.WebhookEvents, mc.TasksDropped)
	reg.MustRegister(collectors.NewGoCollector())
	return mc
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) ObserveAnswer(source entities.AnswerSource) {
	m.Answers.WithLabelValues(string(source)).Inc()
}

func (m *MetricsCollector) ObserveDelivery(channel string, status entities.DeliveryStatus) {
	m.Deliveries.WithLabelValues(channel, string(status)).Inc()
}

func (m *MetricsCollector) ObserveBroadcast() { m.Broadcasts.Inc() }

func (m *MetricsCollector) ObserveWebhook(channel, outcome string) {
	m.WebhookEvents.WithLabelValues(channel, outcome).Inc()
}

func (m *MetricsCollector) ObserveDroppedTask() { m.TasksDropped.Inc() }
