package metrics

import (
	"fmt"
	"sync"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// ServerLatencyView ...
	ServerLatencyView = &view.View{
		Name:        "opencensus.io/http/server/latency",
		Description: "Latency distribution of HTTP requests",
		TagKeys:     []tag.Key{ochttp.Path},
		Measure:     ochttp.ServerLatency,
		Aggregation: ochttp.DefaultLatencyDistribution,
	}
	// ServerResponseCountByStatusCode ...
	ServerResponseCountByStatusCode = &view.View{
		Name:        "opencensus.io/http/server/response_count_by_status_code",
		Description: "Server response count by status code",
		TagKeys:     []tag.Key{ochttp.Path, ochttp.StatusCode},
		Measure:     ochttp.ServerLatency,
		Aggregation: view.Count(),
	}
)

// OcPrometheus ...
type OcPrometheus struct {
	Exporter *ocprom.Exporter
}

var (
	ocOnce     sync.Once
	ocInstance *OcPrometheus
	ocErr      error

	viewOnce sync.Once
	viewErr  error
)

// NewOcPrometheus returns the exporter serving both the opencensus views and
// the collectors of the default prometheus registry. It is created once per process.
func NewOcPrometheus() (*OcPrometheus, error) {
	ocOnce.Do(func() {
		registry, ok := prometheus.DefaultRegisterer.(*prometheus.Registry)
		if !ok {
			ocErr = fmt.Errorf("the default prometheus registerer is not a registry")
			return
		}

		exporter, err := ocprom.NewExporter(ocprom.Options{Registry: registry})
		if err != nil {
			ocErr = fmt.Errorf("could not set up prometheus exporter: %v", err)
			return
		}

		ocInstance = &OcPrometheus{
			Exporter: exporter,
		}
		view.RegisterExporter(exporter)
	})
	return ocInstance, ocErr
}

// RegisterGinView ...
func RegisterGinView() error {
	viewOnce.Do(func() {
		// Register stat views
		viewErr = view.Register(
			// Gin (HTTP) stats
			ochttp.ServerRequestCountView,
			ochttp.ServerRequestBytesView,
			ochttp.ServerResponseBytesView,
			ServerLatencyView,
			ochttp.ServerRequestCountByMethod,
			ServerResponseCountByStatusCode,
		)
	})
	return viewErr
}
