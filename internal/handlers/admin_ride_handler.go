package handlers

import (
	"godeliver/internal/services"
	"godeliver/internal/utils"
	"godeliver/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminRideHandler serves the staff surface: rides addressed by id,
// no relationship checks beyond the role gate on the route group.
type AdminRideHandler struct {
	rideService services.RideService
	assignment  services.AssignmentService
}

func NewAdminRideHandler(rideService services.RideService, assignment services.AssignmentService) *AdminRideHandler {
	return &AdminRideHandler{
		rideService: rideService,
		assignment:  assignment,
	}
}

// GetAllRides lists rides with pagination and optional filters
func (h *AdminRideHandler) GetAllRides(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := make(map[string]interface{})
	if state := c.Query("ride_state"); state != "" {
		filter["ride_state"] = state
	}
	if customer := c.Query("customer"); customer != "" {
		customerID, err := primitive.ObjectIDFromHex(customer)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid customer ID")
			return
		}
		filter["customer"] = customerID
	}
	if rider := c.Query("rider"); rider != "" {
		riderID, err := primitive.ObjectIDFromHex(rider)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid rider ID")
			return
		}
		filter["rider"] = riderID
	}

	rides, total, err := h.rideService.GetAllRides(c.Request.Context(), filter, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(rides),
	}
	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, meta)
}

// GetRide retrieves a single ride by id
func (h *AdminRideHandler) GetRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

// CreateRide creates a ride on a customer's behalf
func (h *AdminRideHandler) CreateRide(c *gin.Context) {
	var request validators.StaffCreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStaffCreateRideRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	customerID, err := primitive.ObjectIDFromHex(request.Customer)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid customer ID")
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), &services.CreateRideRequest{
		Origin:  request.Origin,
		Destiny: request.Destiny,
		Note:    request.Note,
	}, customerID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// UpdateRide applies a staff edit directly to the ride
func (h *AdminRideHandler) UpdateRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
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

	ride, err := h.rideService.UpdateRide(c.Request.Context(), rideID, update)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride updated successfully", ride)
}

// CancelRide force-cancels any ride that has not finished yet
func (h *AdminRideHandler) CancelRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	ride, err := h.rideService.AdminCancelRide(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride canceled successfully", ride)
}

// AssignRider attaches a rider to the ride, or detaches the current
// one when the body carries a null rider.
func (h *AdminRideHandler) AssignRider(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var request validators.AssignRiderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateAssignRiderRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	var riderID *primitive.ObjectID
	if request.Rider != nil {
		id, err := primitive.ObjectIDFromHex(*request.Rider)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid rider ID")
			return
		}
		riderID = &id
	}

	ride, err := h.assignment.Assign(c.Request.Context(), rideID, riderID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rider assignment updated successfully", ride)
}

// DeleteRide removes a ride and prunes it from the parties' histories
func (h *AdminRideHandler) DeleteRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	if err := h.rideService.DeleteRide(c.Request.Context(), rideID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GetRideStats returns per-state ride statistics
func (h *AdminRideHandler) GetRideStats(c *gin.Context) {
	stats, err := h.rideService.GetRideStats(c.Request.Context())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride statistics retrieved successfully", stats)
}
