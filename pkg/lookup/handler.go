// Package lookup exposes the services of a register over HTTP.
package lookup

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/symcn/tracker/pkg/router"
	"github.com/symcn/tracker/pkg/tracker"
	"k8s.io/klog"
)

// Paths
const (
	ServicePath     = "/services/:name"
	AllServicesPath = "/services/:name/all"
	TrackersPath    = "/trackers"
)

// Handler ...
type Handler struct {
	register *tracker.Register
}

// NewHandler ...
func NewHandler(r *tracker.Register) *Handler {
	return &Handler{register: r}
}

// Routes ...
func (h *Handler) Routes() []*router.Route {
	return []*router.Route{
		{
			Method:  "GET",
			Path:    ServicePath,
			Handler: h.GetService,
			Desc:    "the best provider of a service, add optional=true to get 200 when there is none",
		},
		{
			Method:  "GET",
			Path:    AllServicesPath,
			Handler: h.GetServices,
			Desc:    "every provider of a service",
		},
		{
			Method:  "GET",
			Path:    TrackersPath,
			Handler: h.GetTrackers,
			Desc:    "the services tracked so far",
		},
	}
}

// GetService ...
func (h *Handler) GetService(c *gin.Context) {
	name := c.Param("name")
	id := tracker.Identity(name)

	optional, _ := strconv.ParseBool(c.DefaultQuery("optional", "false"))
	if optional {
		s, ok, err := h.register.GetOptionalService(id)
		if err != nil {
			h.fail(c, name, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": name, "found": ok, "instance": s})
		return
	}

	s, err := h.register.GetService(id)
	if err != nil {
		h.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": name, "found": true, "instance": s})
}

// GetServices ...
func (h *Handler) GetServices(c *gin.Context) {
	name := c.Param("name")
	services, err := h.register.GetServices(tracker.Identity(name))
	if err != nil {
		h.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": name, "count": len(services), "instances": services})
}

// GetTrackers ...
func (h *Handler) GetTrackers(c *gin.Context) {
	ids := h.register.Identities()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.String())
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"count": len(names), "services": names})
}

func (h *Handler) fail(c *gin.Context, name string, err error) {
	status := http.StatusInternalServerError
	if tracker.IsNotFound(err) {
		status = http.StatusNotFound
	} else {
		klog.Errorf("[%s] looking up service %s has an error: %v", router.RequestID(c), name, err)
	}
	c.JSON(status, gin.H{"service": name, "error": err.Error()})
}
