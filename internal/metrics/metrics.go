package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	joined = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barber_waitlist",
			Name:      "joined_total",
			Help:      "Count of customers who joined the waitlist.",
		},
	)

	served = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barber_waitlist",
			Name:      "served_total",
			Help:      "Count of terminated entries by outcome (served or left).",
		},
		[]string{"outcome"},
	)

	priorityChanged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barber_waitlist",
			Name:      "priority_changed_total",
			Help:      "Count of operator promote/demote actions.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barber_waitlist",
			Name:      "notifications_total",
			Help:      "Count of threshold notifications by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(joined, served, priorityChanged, notifications)
	})
}

func IncJoined() {
	joined.Inc()
}

func IncServed(outcome string) {
	served.WithLabelValues(outcome).Inc()
}

func IncPriorityChanged() {
	priorityChanged.Inc()
}

func IncNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}
