package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"
)

type KafkaNotifier struct {
	Writer *kafka.Writer
}

func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{Writer: writer}
}

// Publish keys messages by user so one customer's notifications stay ordered.
func (n *KafkaNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: payload,
	})
}
