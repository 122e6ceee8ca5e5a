package validators

type CreateRideRequest struct {
	Origin  []float64 `json:"origin" validate:"required,coordinate"`
	Destiny []float64 `json:"destiny" validate:"required,coordinate"`
	Note    string    `json:"note" validate:"omitempty,max=500"`
}

type StaffCreateRideRequest struct {
	Customer string    `json:"customer" validate:"required,object_id"`
	Origin   []float64 `json:"origin" validate:"required,coordinate"`
	Destiny  []float64 `json:"destiny" validate:"required,coordinate"`
	Note     string    `json:"note" validate:"omitempty,max=500"`
}

type UpdateRideRequest struct {
	Note           *string   `json:"note" validate:"omitempty,max=500"`
	CustomerRating *float64  `json:"customer_rating" validate:"omitempty,rating_value"`
	RideState      *string   `json:"ride_state" validate:"omitempty,oneof=received processing 'on the way' completed canceled failed"`
	Origin         []float64 `json:"origin" validate:"omitempty,coordinate"`
	Destiny        []float64 `json:"destiny" validate:"omitempty,coordinate"`
}

// AssignRiderRequest carries the rider to attach. A null rider detaches
// the current one and sends the ride back to the pending pool.
type AssignRiderRequest struct {
	Rider *string `json:"rider" validate:"omitempty,object_id"`
}

func ValidateCreateRideRequest(req *CreateRideRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if sameCoordinate(req.Origin, req.Destiny) {
		errors = append(errors, ValidationError{
			Field:   "destiny",
			Tag:     "coordinate",
			Message: "origin and destiny must be different locations",
		})
	}

	return errors
}

func ValidateStaffCreateRideRequest(req *StaffCreateRideRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if sameCoordinate(req.Origin, req.Destiny) {
		errors = append(errors, ValidationError{
			Field:   "destiny",
			Tag:     "coordinate",
			Message: "origin and destiny must be different locations",
		})
	}

	return errors
}

func ValidateUpdateRideRequest(req *UpdateRideRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateAssignRiderRequest(req *AssignRiderRequest) ValidationErrors {
	return ValidateStruct(req)
}

func sameCoordinate(a, b []float64) bool {
	if len(a) != 2 || len(b) != 2 {
		return false
	}
	return a[0] == b[0] && a[1] == b[1]
}
