package services

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	homekafka "github.com/mikermcconnell/HomeHealth/internal/home-manager/kafka"
)

const DefaultCompletionsGroupID = "home-manager-completions-group"

// CompletionService consumes completion events from integrations that mark
// tasks done out of band and runs them through the normal lifecycle, so
// recurrences spawn exactly as they do for API completions. Unknown task
// ids are ignored.
type CompletionService struct {
	Lifecycle *LifecycleService
	Reader    *kafka.Reader
}

func NewCompletionService(lifecycle *LifecycleService) *CompletionService {
	completionsTopic := os.Getenv("TASK_COMPLETIONS_TOPIC")
	if completionsTopic == "" {
		completionsTopic = homekafka.DefaultCompletionsTopic
	}
	groupID := os.Getenv("COMPLETIONS_GROUP_ID")
	if groupID == "" {
		groupID = DefaultCompletionsGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        homekafka.BrokerList(),
		GroupID:        groupID,
		Topic:          completionsTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	log.Printf("Home manager Kafka consumer for completions configured for topic: %s, groupID: %s", completionsTopic, groupID)
	return &CompletionService{Lifecycle: lifecycle, Reader: reader}
}

// StartConsuming reads completion events until the context is cancelled.
func (s *CompletionService) StartConsuming(ctx context.Context) {
	log.Println("CompletionService starting to consume external completion events...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Println("CompletionService: context cancelled, stopping consumer.")
				return
			default:
				readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				msg, err := s.Reader.ReadMessage(readCtx)
				cancel()

				if err == context.DeadlineExceeded {
					continue
				}
				if err == context.Canceled {
					log.Println("CompletionService: read context cancelled.")
					return
				}
				if err == io.EOF {
					log.Println("CompletionService: Kafka reader closed (EOF), stopping consumption.")
					return
				}
				if err != nil {
					log.Printf("CompletionService: error reading message: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				s.handleMessage(ctx, msg)
			}
		}
	}()
}

func (s *CompletionService) handleMessage(ctx context.Context, msg kafka.Message) {
	var payload events.CompletionPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		log.Printf("CompletionService: error unmarshalling completion payload: %v. Value: %s", err, string(msg.Value))
		return
	}
	if payload.TaskID == "" {
		log.Printf("CompletionService: completion payload has no task id, skipping. Value: %s", string(msg.Value))
		return
	}

	done, spawned, found, err := s.Lifecycle.CompleteTask(ctx, payload.TaskID, payload.ActualCost, time.Now())
	if err != nil {
		log.Printf("CompletionService: failed to complete task %s: %v", payload.TaskID, err)
		return
	}
	if !found {
		log.Printf("CompletionService: task %s not found, ignoring completion from %q", payload.TaskID, payload.Source)
		return
	}
	if spawned != nil {
		log.Printf("CompletionService: task %s completed via %q, next occurrence %s", done.ID, payload.Source, spawned.ID)
	} else {
		log.Printf("CompletionService: task %s completed via %q", done.ID, payload.Source)
	}
}

// Close shuts the Kafka reader down.
func (s *CompletionService) Close() {
	if s.Reader != nil {
		log.Println("CompletionService: closing Kafka reader.")
		if err := s.Reader.Close(); err != nil {
			log.Printf("CompletionService: error closing Kafka reader: %v", err)
		}
	}
}
