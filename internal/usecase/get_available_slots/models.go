package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ResourceID string    // ID ресурса
	ServiceID  string    // ID услуги, задаёт длительность и буферы
	Date       time.Time // Дата (полночь в часовом поясе расписаний)
	GuestCount int       // Количество гостей, 0 - по умолчанию 1
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time
	ResourceID string
	ServiceID  string
	Slots      []domain.AvailableSlot
}
