package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TriggersAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twobot_triggers_accepted_total",
		Help: "Trigger events that incremented a counter",
	})
	TriggersSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twobot_triggers_suppressed_total",
		Help: "Trigger events suppressed by the cooldown window",
	})
	NoticesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twobot_notices_total",
		Help: "One-time cooldown notices sent to chat",
	})
	Commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twobot_commands_total",
		Help: "Chat commands handled",
	}, []string{"kind"})
	ProfileLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twobot_profile_lookups_total",
		Help: "Profile cache resolutions",
	}, []string{"result"})
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twobot_events_dropped_total",
		Help: "Inbound events dropped before dispatch",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(
		TriggersAccepted,
		TriggersSuppressed,
		NoticesSent,
		Commands,
		ProfileLookups,
		EventsDropped,
	)
}
