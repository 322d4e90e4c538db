// Package metrics exposes the engine's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackas_sessions_created_total",
		Help: "Class sessions created.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackas_attendance_submissions_total",
		Help: "Attendance submissions by outcome.",
	}, []string{"outcome"})

	SubmissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackas_attendance_rejections_total",
		Help: "Rejected attendance submissions by error code.",
	}, []string{"code"})
)
