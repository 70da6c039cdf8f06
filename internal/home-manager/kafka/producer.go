package kafka

import (
	"log"
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultKafkaBrokers     = "localhost:9092"
	DefaultTaskEventsTopic  = "home_task_events"
	DefaultRemindersTopic   = "home_task_reminders"
	DefaultCompletionsTopic = "home_task_completions"
)

// BrokerList resolves KAFKA_BROKERS into a broker slice.
func BrokerList() []string {
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		kafkaBrokers = DefaultKafkaBrokers
	}
	return strings.Split(kafkaBrokers, ",")
}

// NewTaskEventsProducer returns a writer for the task lifecycle topic.
func NewTaskEventsProducer() *kafka.Writer {
	return newProducer("TASK_EVENTS_TOPIC", DefaultTaskEventsTopic)
}

// NewRemindersProducer returns a writer for the reminder digest topic.
func NewRemindersProducer() *kafka.Writer {
	return newProducer("TASK_REMINDERS_TOPIC", DefaultRemindersTopic)
}

func newProducer(topicEnvVar, defaultTopic string) *kafka.Writer {
	topic := os.Getenv(topicEnvVar)
	if topic == "" {
		topic = defaultTopic
	}
	producer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      BrokerList(),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
		Async:        false,
	})
	log.Printf("Home manager Kafka producer configured for topic: %s", topic)
	return producer
}
