package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Number of live sessions in the roster, registered or not",
	})

	RegisteredUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_registered_users",
		Help: "Number of sessions holding a username",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_commands_total",
		Help: "Total client commands processed by keyword",
	}, []string{"command"})

	CommandProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_command_processing_seconds",
		Help:    "Time to process each command keyword",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	DroppedLines = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_dropped_lines_total",
		Help: "Outbound lines dropped because a session's outbox was full",
	})
)

func init() {
	prometheus.MustRegister(ConnectedSessions)
	prometheus.MustRegister(RegisteredUsers)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandProcessingDuration)
	prometheus.MustRegister(DroppedLines)
}
