package events

// Connection соединение с брокером (*nats.Conn)
type Connection interface {
	Publish(subject string, data []byte) error
	Close()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
