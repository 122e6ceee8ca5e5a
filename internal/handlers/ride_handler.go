package handlers

import (
	"godeliver/internal/middleware"
	"godeliver/internal/models"
	"godeliver/internal/services"
	"godeliver/internal/utils"
	"godeliver/internal/validators"

	"github.com/gin-gonic/gin"
)

// RideHandler serves the customer and rider surface: rides are always
// resolved through the acting user, never by id.
type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// CreateMyRide creates a ride for the authenticated customer
func (h *RideHandler) CreateMyRide(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.CreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateCreateRideRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	ride, err := h.rideService.CreateMyRide(c.Request.Context(), actor, &services.CreateRideRequest{
		Origin:  request.Origin,
		Destiny: request.Destiny,
		Note:    request.Note,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// GetMyRides lists the authenticated user's rides
func (h *RideHandler) GetMyRides(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rides, err := h.rideService.GetMyRides(c.Request.Context(), actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rides retrieved successfully", rides)
}

// UpdateMyRide edits the authenticated user's current order
func (h *RideHandler) UpdateMyRide(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.UpdateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateUpdateRideRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	update := toRideUpdate(&request)
	if update.Empty() {
		utils.BadRequestResponse(c, "Nothing to update")
		return
	}

	ride, err := h.rideService.UpdateMyRide(c.Request.Context(), actor, update)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride updated successfully", ride)
}

// CancelMyRide cancels the authenticated customer's current order
func (h *RideHandler) CancelMyRide(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ride, err := h.rideService.CancelMyRide(c.Request.Context(), actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride canceled successfully", ride)
}

func toRideUpdate(req *validators.UpdateRideRequest) *services.RideUpdate {
	update := &services.RideUpdate{
		Note:           req.Note,
		CustomerRating: req.CustomerRating,
		Origin:         req.Origin,
		Destiny:        req.Destiny,
	}
	if req.RideState != nil {
		state := models.RideState(*req.RideState)
		update.RideState = &state
	}
	return update
}
