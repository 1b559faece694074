package check_availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на проверку доступности
type Request struct {
	ResourceID string
	ServiceID  string     // опционально, задаёт длительность и буферы
	StartTime  time.Time
	EndTime    *time.Time // обязателен без услуги или для flexible
	GuestCount int        // 0 - по умолчанию 1
}

// Response модель ответа проверки доступности
type Response struct {
	ResourceID    string
	StartTime     time.Time
	EndTime       time.Time
	Available     bool
	Mode          domain.CapacityMode
	CurrentCount  int
	TotalCapacity int
	Reason        string
}
