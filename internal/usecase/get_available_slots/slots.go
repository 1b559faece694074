package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// slotPlan длительность кандидата и шаг перебора внутри диапазона расписания
type slotPlan struct {
	duration int // минуты
	// singlePerRange - не более одного слота на диапазон, конец обрезается по диапазону
	singlePerRange bool
}

// planFor определяет длительность слотов для услуги
//
// Для fixed это длительность услуги. Для остальных типов длительность
// берётся из пробного расчёта от нулевого момента времени: full-day даёт
// почти сутки, поэтому на каждый диапазон приходится один слот, а flexible
// без конца не считается и перебирается с шагом длительности услуги.
func planFor(service *domain.Service) slotPlan {
	durationType := service.EffectiveDurationType()
	if durationType == domain.DurationFixed {
		return slotPlan{duration: service.EffectiveDuration()}
	}

	probe, err := domain.ComputeEndTime(domain.EndTimeParams{
		DurationType:    durationType,
		ServiceDuration: service.EffectiveDuration(),
		StartTime:       time.Unix(0, 0).UTC(),
	})
	if err != nil || probe.DurationMinutes < 1 {
		return slotPlan{duration: service.EffectiveDuration()}
	}

	return slotPlan{
		duration:       probe.DurationMinutes,
		singlePerRange: durationType == domain.DurationFullDay,
	}
}

// candidates перебирает кандидатов внутри диапазона с фиксированным шагом
// Перебор прекращается, как только конец кандидата выходит за диапазон
func (p slotPlan) candidates(r domain.TimeRange) []domain.TimeRange {
	out := make([]domain.TimeRange, 0)

	if p.singlePerRange {
		end := domain.AddMinutes(r.Start, p.duration)
		if end.After(r.End) {
			end = r.End
		}
		if end.After(r.Start) {
			out = append(out, domain.TimeRange{Start: r.Start, End: end})
		}
		return out
	}

	for start := r.Start; ; start = domain.AddMinutes(start, p.duration) {
		end := domain.AddMinutes(start, p.duration)
		if end.After(r.End) {
			break
		}
		out = append(out, domain.TimeRange{Start: start, End: end})
	}
	return out
}
