package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// MessageWriter *kafka.Writer 满足该接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink 将事件以 JSON 写入 Kafka，主体标识作为消息键以保持同一主体的事件有序
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaSink 创建 Kafka 接收端
func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// Record implements Sink
func (s *KafkaSink) Record(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(e.Subject),
		Value: value,
		Time:  e.Time,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	return s.writer.WriteMessages(ctx, msg)
}
