package kafka

import (
	"fmt"

	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// NewNotificationWriter builds the writer for the outbound
// notification topic. Messages are keyed by recipient so one user's
// notifications stay ordered.
func NewNotificationWriter(cfg config.Notifier, log logger.Logger) (*kafka.Writer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Async:        false,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Infow("kafka writer info",
				"topic", cfg.Topic,
				"message", fmt.Sprintf(msg, args...),
			)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Errorw("kafka writer error",
				"topic", cfg.Topic,
				"error", fmt.Sprintf(msg, args...),
			)
		}),
	}

	if err := checkKafkaConnection(cfg.Brokers, log); err != nil {
		return nil, err
	}

	return writer, nil
}

func checkKafkaConnection(brokers []string, log logger.Logger) error {
	const op = "kafka.checkKafkaConnection"

	dialer := &kafka.Dialer{}
	for _, broker := range brokers {
		conn, err := dialer.Dial("tcp", broker)
		if err != nil {
			return fmt.Errorf("%s: connect to %s: %w", op, broker, err)
		}

		if err = conn.Close(); err != nil {
			log.Warnw("failed to close connection",
				"operation", op,
				"broker", broker,
				"error", err)
		}
	}
	return nil
}
