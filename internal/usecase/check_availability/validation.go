package check_availability

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ResourceID == "" {
		return fmt.Errorf("%w: resourceID is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}

	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	if req.GuestCount < 0 {
		return fmt.Errorf("%w: guestCount must not be negative", ErrInvalidInput)
	}

	return nil
}
