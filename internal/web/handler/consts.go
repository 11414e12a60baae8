package handler

const (
	// APIPath is the prefix of the versioned JSON API.
	APIPath = "/api/v1"

	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)
