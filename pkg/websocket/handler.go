package websocket

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(config *Config) *Handler {
	hub := NewHub(config)
	go hub.Run()

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  hub.config.ReadBufferSize,
			WriteBufferSize: hub.config.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(hub.config.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// originAllowed matches the request origin against the configured
// list. An empty list or a "*" entry admits everything; browserless
// clients send no Origin header and are always admitted.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userType, exists := c.Get("user_type")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User type not found"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	userTypeStr, ok := userType.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user type"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userObjectID, userTypeStr)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// NotifyRideChange pushes a change notification for a ride to a single
// user's room.
func (h *Handler) NotifyRideChange(userID, rideID primitive.ObjectID) {
	message := Message{
		Type:      "changeNotification",
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data: map[string]interface{}{
			"ride_id": rideID.Hex(),
		},
	}

	h.hub.SendToUser(userID, message)
}
