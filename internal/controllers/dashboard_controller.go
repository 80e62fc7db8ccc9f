package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ostech2/uhsms/internal/dashboard"
)

type DashboardController struct {
	Dashboards *dashboard.Service
}

// Get returns the admin or warden dashboard for the caller's role.
func (dc *DashboardController) Get(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	view, err := dc.Dashboards.For(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
