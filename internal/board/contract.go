package board

// Publisher публикует события доски
type Publisher interface {
	PublishJSON(eventType string, appointmentID int64, payload interface{}) error
}

// MetricsRecorder счётчики сверки
type MetricsRecorder interface {
	IncCorrections()
	IncRollbacks()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
