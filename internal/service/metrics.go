package service

import "github.com/prometheus/client_golang/prometheus"

var (
	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_events_total", Help: "Registrations and logins by outcome"},
		[]string{"event", "outcome"},
	)
	followEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "follow_events_total", Help: "Follow graph mutations"},
		[]string{"event"},
	)
)

func init() { prometheus.MustRegister(authEvents, followEvents) }
