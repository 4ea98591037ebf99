package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transitions counts successful status changes.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testrequest_transitions_total",
		Help: "Test request status transitions by source and target status",
	}, []string{"from", "to"})

	// TransitionRejections counts lifecycle operations refused before any write.
	TransitionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testrequest_transition_rejections_total",
		Help: "Rejected lifecycle operations by action and reason",
	}, []string{"action", "reason"})
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
