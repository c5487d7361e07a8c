package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
)

// MetricSpec describes how a MetricKey is registered with a backend.
type MetricSpec struct {
	Key    MetricKey
	Help   string
	Labels []string
}

var (
	CounterSpecs = []MetricSpec{
		{MUsecaseRequests, "Total number of use case invocations.", []string{"use_case", "outcome"}},
		{MHTTPRequests, "Total number of HTTP requests served.", []string{"method", "route", "status"}},
		{MExternalRequests, "Total number of calls to downstream services and sinks.", []string{"peer", "endpoint", "outcome"}},
	}
	HistogramSpecs = []MetricSpec{
		{MUsecaseDuration, "Duration of use case execution in seconds.", []string{"use_case"}},
		{MHTTPRequestDuration, "Duration of HTTP requests in seconds.", []string{"method", "route", "status"}},
		{MExternalRequestDuration, "Duration of downstream calls in seconds.", []string{"peer", "endpoint"}},
	}
)
