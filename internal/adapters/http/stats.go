package http

import (
	"net/http"

	"github.com/dkeye/Karaoke/internal/app/orch"
	"github.com/gin-gonic/gin"
)

type stats struct {
	Sessions         int `json:"sessions"`
	Connections      int `json:"connections"`
	PendingEvictions int `json:"pending_evictions"`
}

func statsHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stats{
			Sessions:         o.Sessions.Len(),
			Connections:      o.Registry.Len(),
			PendingEvictions: o.PendingEvictions(),
		})
	}
}
