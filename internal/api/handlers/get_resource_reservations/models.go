package get_resource_reservations

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// date=YYYY-MM-DD задаёт окно в одни сутки, from/to - произвольное окно
func ToServiceRequest(r *http.Request, resourceID string, loc *time.Location) (*models.ListRequest, error) {
	req := &models.ListRequest{
		ResourceID: &resourceID,
		Statuses:   handlers.QueryList(r, "status"),
	}

	day, err := handlers.QueryTime(r, "date", loc)
	if err != nil {
		return nil, err
	}
	if day != nil {
		to := day.AddDate(0, 0, 1)
		req.From, req.To = day, &to
		return req, nil
	}

	if req.From, err = handlers.QueryTime(r, "from", loc); err != nil {
		return nil, err
	}
	if req.To, err = handlers.QueryTime(r, "to", loc); err != nil {
		return nil, err
	}
	return req, nil
}
