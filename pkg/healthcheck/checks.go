package healthcheck

import (
	"github.com/symcn/tracker/pkg/tracker"
)

// ServiceCheck fails while the directory has no provider of the service.
func ServiceCheck(r *tracker.Register, id tracker.Identity) Check {
	return func() error {
		_, err := r.GetService(id)
		return err
	}
}

// AddServiceChecks makes the readiness of the process depend on the services.
func AddServiceChecks(h Handler, r *tracker.Register, ids ...tracker.Identity) {
	for _, id := range ids {
		h.AddReadinessCheck("service-"+id.String(), ServiceCheck(r, id))
	}
}
