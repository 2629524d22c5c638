package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/samvad-hq/horizonti-reader/internal/logger"
)

// kafkaPublisher writes events keyed by article guid so every rendering of one
// article lands on the same partition.
type kafkaPublisher struct {
	id       string
	topic    string
	producer sarama.SyncProducer
	log      logger.Logger
}

func newKafkaPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.Kafka == nil {
		return nil, fmt.Errorf("publisher %q missing kafka configuration", cfg.ID)
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V3_6_0_0
	sc.ClientID = cfg.Kafka.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &kafkaPublisher{
		id:       cfg.ID,
		topic:    cfg.Kafka.Topic,
		producer: producer,
		log:      logger.Ensure(log),
	}, nil
}

func (k *kafkaPublisher) ID() string   { return k.id }
func (k *kafkaPublisher) Type() string { return TypeKafka }

func (k *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(evt.Article.GUID),
		Value: sarama.ByteEncoder(payload),
	}
	for key, val := range evt.attributes() {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(val)})
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send message to kafka: %w", err)
	}
	k.log.DebugObj("kafka publisher delivered event", "publisher_kafka_delivery", map[string]any{
		"publisher_id": k.id,
		"partition":    partition,
		"offset":       offset,
	})
	return nil
}

func (k *kafkaPublisher) Close() error { return k.producer.Close() }
