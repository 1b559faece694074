package get_customer_reservations

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису: from/to и status из query
func ToServiceRequest(r *http.Request, customerID string, loc *time.Location) (*models.ListRequest, error) {
	req := &models.ListRequest{
		CustomerID: &customerID,
		Statuses:   handlers.QueryList(r, "status"),
	}

	var err error
	if req.From, err = handlers.QueryTime(r, "from", loc); err != nil {
		return nil, err
	}
	if req.To, err = handlers.QueryTime(r, "to", loc); err != nil {
		return nil, err
	}
	return req, nil
}
