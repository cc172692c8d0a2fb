// Package eventsink forwards board events from the in-process bus to Kafka.
package eventsink

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-ShopScheduler/internal/events"
)

const (
	sinkName     = "kafka"
	writeTimeout = 5 * time.Second
)

// MetricsRecorder счетчик опубликованных событий
type MetricsRecorder interface {
	IncEventPublished(sink, eventType string, err error)
}

// Logger сообщает об ошибках фоновой отправки
type Logger interface {
	Error(format string, v ...interface{})
}

// MessageWriter запись сообщений в Kafka
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink публикует события доски в топик.
// Ключ сообщения это ID записи, поэтому события одной записи идут в одну партицию по порядку.
// Handle только ставит событие в очередь, запись в брокер идет в фоновой горутине.
type KafkaSink struct {
	writer  MessageWriter
	topic   string
	metrics MetricsRecorder
	logger  Logger

	queue  chan events.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewKafkaSink создает sink с writer на Hash-балансировщике
func NewKafkaSink(brokers []string, topic string, bufferSize int, metrics MetricsRecorder, logger Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
	}
	return NewWithWriter(writer, topic, bufferSize, metrics, logger)
}

// NewWithWriter создает sink поверх готового writer и запускает отправку
func NewWithWriter(writer MessageWriter, topic string, bufferSize int, metrics MetricsRecorder, logger Logger) *KafkaSink {
	if bufferSize < 1 {
		bufferSize = 1
	}
	s := &KafkaSink{
		writer:  writer,
		topic:   topic,
		metrics: metrics,
		logger:  logger,
		queue:   make(chan events.Event, bufferSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Handle обработчик для events.Bus. Не блокирует публикацию:
// при переполненной очереди событие отбрасывается с ErrBufferFull.
func (s *KafkaSink) Handle(event events.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("%w: drop %s id=%s", ErrClosed, event.Type, event.ID)
	}

	select {
	case s.queue <- event:
		return nil
	default:
		s.record(event, ErrBufferFull)
		return fmt.Errorf("%w: drop %s id=%s", ErrBufferFull, event.Type, event.ID)
	}
}

// Close перестает принимать события, дожидается отправки очереди и закрывает writer
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
	return s.writer.Close()
}

func (s *KafkaSink) run() {
	defer close(s.done)

	for event := range s.queue {
		err := s.write(event)
		s.record(event, err)
		if err != nil && s.logger != nil {
			s.logger.Error("eventsink: write %s id=%s to %s: %v", event.Type, event.ID, s.topic, err)
		}
	}
}

func (s *KafkaSink) write(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return s.writer.WriteMessages(ctx, buildMessage(event))
}

func (s *KafkaSink) record(event events.Event, err error) {
	if s.metrics != nil {
		s.metrics.IncEventPublished(sinkName, event.Type, err)
	}
}

func buildMessage(event events.Event) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AppointmentID, 10)),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
}
