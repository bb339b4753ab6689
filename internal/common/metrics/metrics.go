package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	pointsMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "points",
			Name:      "mutations_total",
			Help:      "Total number of committed balance mutations.",
		},
		[]string{"type"},
	)

	pointsAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "points",
			Name:      "amount_total",
			Help:      "Total points credited and debited.",
		},
		[]string{"direction"},
	)

	raffleJoins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "raffle",
			Name:      "joins_total",
			Help:      "Total number of successful raffle joins.",
		},
	)

	raffleDraws = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "raffle",
			Name:      "draws_total",
			Help:      "Total number of committed raffle draws.",
		},
	)

	referralRedeems = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "referral",
			Name:      "redeems_total",
			Help:      "Total number of successful invite code redemptions.",
		},
	)

	taskCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "task",
			Name:      "completions_total",
			Help:      "Total number of credited task completions.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		pointsMutations,
		pointsAmount,
		raffleJoins,
		raffleDraws,
		referralRedeems,
		taskCompletions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware collects request count and duration per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordMutation records a committed balance mutation.
func RecordMutation(entryType string, amount int64) {
	pointsMutations.WithLabelValues(entryType).Inc()
	if amount >= 0 {
		pointsAmount.WithLabelValues("credit").Add(float64(amount))
	} else {
		pointsAmount.WithLabelValues("debit").Add(float64(-amount))
	}
}

// RecordRaffleJoin records a successful join.
func RecordRaffleJoin() {
	raffleJoins.Inc()
}

// RecordRaffleDraw records a committed draw.
func RecordRaffleDraw() {
	raffleDraws.Inc()
}

// RecordReferralRedeem records a successful redemption.
func RecordReferralRedeem() {
	referralRedeems.Inc()
}

// RecordTaskCompletion records a credited completion.
func RecordTaskCompletion() {
	taskCompletions.Inc()
}
