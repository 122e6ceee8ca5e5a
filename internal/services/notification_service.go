package services

import (
	"godeliver/pkg/logger"
	"godeliver/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier pushes a "your ride changed" event to a user. Delivery is
// best-effort and must never block or fail the mutation that
// triggered it.
type Notifier interface {
	NotifyRideChange(userID, rideID primitive.ObjectID)
}

type websocketNotifier struct {
	ws  *websocket.Handler
	log *logger.Logger
}

func NewWebsocketNotifier(ws *websocket.Handler, log *logger.Logger) Notifier {
	return &websocketNotifier{
		ws:  ws,
		log: log,
	}
}

func (n *websocketNotifier) NotifyRideChange(userID, rideID primitive.ObjectID) {
	n.ws.NotifyRideChange(userID, rideID)
	n.log.WithUserID(userID).WithRideID(rideID).Debug("ride change notification sent")
}

// noopNotifier is used when no websocket hub is wired, e.g. in tests.
type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyRideChange(userID, rideID primitive.ObjectID) {}
