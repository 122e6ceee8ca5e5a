package routes

import (
	"godeliver/internal/handlers"
	"godeliver/internal/middleware"
	"godeliver/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up the ride surface: the own-ride routes for
// customers and riders, the staff routes for employees, and the
// websocket upgrade for change notifications.
func SetupRideRoutes(
	r *gin.RouterGroup,
	jwtSecret string,
	rideHandler *handlers.RideHandler,
	adminHandler *handlers.AdminRideHandler,
	wsHandler *websocket.Handler,
) {
	// Own-ride routes: the ride is always resolved through the actor.
	my := r.Group("/rides/my")
	my.Use(middleware.AuthRequired(jwtSecret))
	{
		my.POST("", rideHandler.CreateMyRide)
		my.GET("", rideHandler.GetMyRides)
		my.PATCH("", rideHandler.UpdateMyRide)
		my.PATCH("/cancel", rideHandler.CancelMyRide)
	}

	// Staff routes
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret), middleware.StaffRequired())
	{
		rides.GET("", adminHandler.GetAllRides)
		rides.POST("", adminHandler.CreateRide)
		rides.GET("/stats", adminHandler.GetRideStats)
		rides.GET("/:id", adminHandler.GetRide)
		rides.PATCH("/:id", adminHandler.UpdateRide)
		rides.PATCH("/:id/cancel", adminHandler.CancelRide)
		rides.PATCH("/:id/rider", adminHandler.AssignRider)
		// Hard deletion is reserved for admins; coordinators manage
		// the lifecycle but never erase it.
		rides.DELETE("/:id", middleware.AdminRequired(), adminHandler.DeleteRide)
	}

	// Change notifications
	ws := r.Group("/ws")
	ws.Use(middleware.AuthRequired(jwtSecret))
	{
		ws.GET("", wsHandler.HandleWebSocket)
	}
}
