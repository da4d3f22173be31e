package model

// MealOrder is one line of a catering request.
type MealOrder struct {
	MealType string `json:"meal_type"`
	Count    int    `json:"count"`
}

// DeliveryRequest asks for meals to be delivered to an aircraft.
// NodeID optionally names the logical delivery point.
type DeliveryRequest struct {
	AircraftID string      `json:"aircraft_id"`
	NodeID     string      `json:"node_id,omitempty"`
	Meals      []MealOrder `json:"meals"`
}

// TotalMeals sums the counts of all orders.
func (r DeliveryRequest) TotalMeals() int {
	total := 0
	for _, m := range r.Meals {
		total += m.Count
	}
	return total
}

// DeliveryResult is returned to the submitter of a request. Waiting is an
// advisory flag telling whether vehicles were exhausted at submission time.
type DeliveryResult struct {
	Status     string `json:"status"`
	Waiting    bool   `json:"waiting"`
	TotalMeals int    `json:"total_meals"`
	Trips      int    `json:"trips,omitempty"`
}
