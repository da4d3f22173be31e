package groundcontrol

import "errors"

var (
	// ErrConflict is returned by RequestMove when the edge is temporarily
	// occupied.
	ErrConflict = errors.New("ground control: move conflict")
	// ErrUnavailable wraps transport and non-success responses.
	ErrUnavailable = errors.New("ground control: unavailable")
	// ErrRouteInvalid is returned for routes with fewer than two nodes.
	ErrRouteInvalid = errors.New("ground control: route has fewer than two nodes")
)

// ValidateRoute checks that a route can be driven.
func ValidateRoute(route []string) error {
	if len(route) < 2 {
		return ErrRouteInvalid
	}
	return nil
}
