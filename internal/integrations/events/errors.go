package events

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к NATS
	ErrConnect = errors.New("events: failed to connect")

	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("events: failed to publish")

	// ErrMarshal возвращается при ошибке сериализации события
	ErrMarshal = errors.New("events: failed to marshal")
)
