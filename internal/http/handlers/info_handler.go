package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthPingTimeout bounds the database ping made by /health.
const healthPingTimeout = 2 * time.Second

// HealthResponse reports liveness and database reachability.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	// up | down
	Database  string    `json:"database" example:"up"`
	Timestamp time.Time `json:"timestamp" example:"2025-01-02T15:04:05Z"`
	Endpoints []string  `json:"endpoints" example:"POST /webhook/call,POST /webhook/contact,GET /health"`
}

// RootResponse describes the service.
type RootResponse struct {
	Message   string            `json:"message" example:"VanillaSoft to MySQL Webhook Server"`
	Endpoints map[string]string `json:"endpoints"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// Health godoc
// @ID          health
// @Summary     Liveness and database status
// @Description Always 200 while the process is serving. "database" is "down" when the store cannot be reached.
// @Tags        Info
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	db := "up"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			db = "down"
		}
	}

	ok(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Database:  db,
		Timestamp: time.Now().UTC(),
		Endpoints: []string{
			"POST " + h.route("/call"),
			"POST " + h.route("/contact"),
			"GET /health",
		},
	})
}

// Root godoc
// @ID          root
// @Summary     Service description
// @Tags        Info
// @Produce     json
// @Success     200  {object}  handlers.RootResponse
// @Router      / [get]
func (h *Handlers) Root(c *gin.Context) {
	ok(c, http.StatusOK, RootResponse{
		Message: "VanillaSoft to MySQL Webhook Server",
		Endpoints: map[string]string{
			"callHistory": "POST " + h.route("/call"),
			"contact":     "POST " + h.route("/contact"),
			"health":      "GET /health",
			"metrics":     "GET /metrics",
		},
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handlers) route(suffix string) string {
	if h.basePath == "" || h.basePath == "/" {
		return suffix
	}
	return h.basePath + suffix
}
