package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Ostech2/uhsms/internal/middleware"
	"github.com/Ostech2/uhsms/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; rely on JWT auth.
		return true
	},
}

func ApprovalHandler(hub *ApprovalHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := middleware.CurrentProfile(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if profile.Role != models.RoleAdmin && !profile.IsWarden() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newApprovalClient(hub, conn, profile.ID, profile.Role == models.RoleAdmin)
		if !hub.add(client) {
			conn.Close()
			return
		}

		go client.writePump()
		client.readPump()
	}
}
