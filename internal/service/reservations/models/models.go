package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// Actor инициатор операции
type Actor struct {
	UserID     string
	Privileged bool
}

// Request модели

// CreateRequest запрос на создание бронирования
type CreateRequest struct {
	Actor Actor
	Raw   domain.RawReservation
	// SkipValidation пропуск проверок конвейера, только для привилегированных
	SkipValidation bool
}

// Patch частичное обновление бронирования, nil - поле не меняется
type Patch struct {
	Resource           *domain.Ref       `json:"resource,omitempty"`
	Service            *domain.Ref       `json:"service,omitempty"`
	Customer           *domain.Ref       `json:"customer,omitempty"`
	StartTime          *time.Time        `json:"startTime,omitempty"`
	EndTime            *time.Time        `json:"endTime,omitempty"`
	GuestCount         *int              `json:"guestCount,omitempty"`
	Status             *string           `json:"status,omitempty"`
	CancellationReason *string           `json:"cancellationReason,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
	Items              *[]domain.RawItem `json:"items,omitempty"`
}

// Apply накладывает изменения на бронирование в форме запроса
func (p Patch) Apply(raw domain.RawReservation) domain.RawReservation {
	raw.Resource = ptr.Value(p.Resource, raw.Resource)
	raw.Service = ptr.Value(p.Service, raw.Service)
	raw.Customer = ptr.Value(p.Customer, raw.Customer)
	raw.Status = ptr.Value(p.Status, raw.Status)
	raw.CancellationReason = ptr.Value(p.CancellationReason, raw.CancellationReason)
	raw.Notes = ptr.Value(p.Notes, raw.Notes)

	if p.StartTime != nil {
		raw.StartTime = ptr.Ptr(*p.StartTime)
	}
	if p.EndTime != nil {
		raw.EndTime = ptr.Ptr(*p.EndTime)
	}
	if p.GuestCount != nil {
		raw.GuestCount = ptr.Ptr(*p.GuestCount)
	}
	if p.Items != nil {
		raw.Items = append([]domain.RawItem(nil), (*p.Items)...)
	}
	return raw
}

// UpdateRequest запрос на обновление бронирования
type UpdateRequest struct {
	Actor          Actor
	ID             string
	Patch          Patch
	SkipValidation bool
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	Actor              Actor
	ID                 string
	CancellationReason string
}

// ListRequest запрос на получение списка бронирований
type ListRequest struct {
	ResourceID *string
	CustomerID *string
	From       *time.Time
	To         *time.Time
	Statuses   []string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() domain.ReservationFilter {
	return domain.ReservationFilter{
		ResourceID: r.ResourceID,
		CustomerID: r.CustomerID,
		From:       r.From,
		To:         r.To,
		Statuses:   r.Statuses,
	}
}

// Response модели

// ItemResponse позиция составного бронирования
type ItemResponse struct {
	Resource   string    `json:"resource"`
	Service    string    `json:"service,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	GuestCount int       `json:"guestCount"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID                 string         `json:"id"`
	Resource           string         `json:"resource"`
	Service            string         `json:"service,omitempty"`
	Customer           string         `json:"customer,omitempty"`
	StartTime          time.Time      `json:"startTime"`
	EndTime            time.Time      `json:"endTime"`
	Status             string         `json:"status"`
	GuestCount         int            `json:"guestCount"`
	CancellationReason *string        `json:"cancellationReason,omitempty"`
	IdempotencyKey     *string        `json:"idempotencyKey,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
	Items              []ItemResponse `json:"items,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

// FromDomainReservation конвертирует domain модель в response
func FromDomainReservation(res *domain.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:                 res.ID,
		Resource:           res.ResourceID,
		Service:            res.ServiceID,
		Customer:           res.CustomerID,
		StartTime:          res.StartTime,
		EndTime:            res.EndTime,
		Status:             res.Status,
		GuestCount:         res.GuestCount,
		CancellationReason: res.CancellationReason,
		IdempotencyKey:     res.IdempotencyKey,
		Notes:              res.Notes,
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
	}
	for _, it := range res.Items {
		resp.Items = append(resp.Items, ItemResponse{
			Resource:   it.ResourceID,
			Service:    it.ServiceID,
			StartTime:  it.StartTime,
			EndTime:    it.EndTime,
			GuestCount: it.GuestCount,
		})
	}
	return resp
}

// FromDomainReservationList конвертирует список domain моделей в response
func FromDomainReservationList(list []*domain.Reservation) *ReservationListResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, *FromDomainReservation(res))
	}
	return &ReservationListResponse{
		Reservations: out,
		Total:        len(out),
	}
}
