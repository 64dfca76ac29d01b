package httptransport

import "expvar"

var (
	metricRequestErrors = expvar.NewMap("http_errors_total")
	metricRateLimited   = expvar.NewInt("http_rate_limited_total")
	metricInternalError = expvar.NewInt("http_internal_errors_total")
)
