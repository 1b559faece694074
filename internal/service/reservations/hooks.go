package reservations

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Hook подписчик на события жизненного цикла бронирования
// Вызывается только после фиксации транзакции, ошибки подписчика не отменяют запись
type Hook interface {
	OnCreated(ctx context.Context, res *domain.Reservation) error
	OnStatusChanged(ctx context.Context, res *domain.Reservation, previousStatus string) error
	OnConfirmed(ctx context.Context, res *domain.Reservation) error
	OnCancelled(ctx context.Context, res *domain.Reservation) error
}

// RegisterHook добавляет подписчика. Подписчики вызываются в порядке регистрации
func (s *Service) RegisterHook(h Hook) {
	s.hooks = append(s.hooks, h)
}

func (s *Service) afterCreate(ctx context.Context, res *domain.Reservation) {
	for _, h := range s.hooks {
		if err := h.OnCreated(ctx, res); err != nil {
			s.logger.Error("afterCreate: hook failed for reservation id=%s: %v", res.ID, err)
		}
	}
}

// afterStatusChange порядок: смена статуса, затем подтверждение или отмена
func (s *Service) afterStatusChange(ctx context.Context, res *domain.Reservation, previousStatus string) {
	if previousStatus == res.Status {
		return
	}

	for _, h := range s.hooks {
		if err := h.OnStatusChanged(ctx, res, previousStatus); err != nil {
			s.logger.Error("afterStatusChange: hook failed for reservation id=%s (%s -> %s): %v",
				res.ID, previousStatus, res.Status, err)
		}
	}

	switch res.Status {
	case s.opts.ConfirmedStatus:
		for _, h := range s.hooks {
			if err := h.OnConfirmed(ctx, res); err != nil {
				s.logger.Error("afterStatusChange: confirm hook failed for reservation id=%s: %v", res.ID, err)
			}
		}
	case s.opts.CancelledStatus:
		for _, h := range s.hooks {
			if err := h.OnCancelled(ctx, res); err != nil {
				s.logger.Error("afterStatusChange: cancel hook failed for reservation id=%s: %v", res.ID, err)
			}
		}
	}
}
