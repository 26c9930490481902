package hotel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	availabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_availability_checks_total",
		Help: "Room availability checks by result (available, unavailable, error)",
	}, []string{"result"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_bookings_created_total",
		Help: "Bookings successfully created",
	})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_logins_total",
		Help: "Login attempts by result (success, failure)",
	}, []string{"result"})
)
