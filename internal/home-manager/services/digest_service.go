package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const (
	defaultDigestCron        = "0 8 * * *"
	defaultDigestHorizonDays = 7

	digestCronEnvVar    = "DIGEST_CRON"
	digestHorizonEnvVar = "DIGEST_HORIZON_DAYS"
)

// DigestService publishes the daily reminder digest: one Kafka message per
// pending task that is overdue or coming due within the horizon. The cron
// schedule and horizon come from DIGEST_CRON and DIGEST_HORIZON_DAYS.
type DigestService struct {
	DB         *gorm.DB
	Scheduler  gocron.Scheduler
	Producer   events.Producer
	horizon    int
	appContext context.Context
}

func NewDigestService(ctx context.Context, db *gorm.DB, producer events.Producer) (*DigestService, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	horizon := defaultDigestHorizonDays
	if raw := os.Getenv(digestHorizonEnvVar); raw != "" {
		if days, convErr := strconv.Atoi(raw); convErr == nil && days > 0 {
			horizon = days
		} else {
			log.Printf("DigestService: invalid %s value %q, using default %d", digestHorizonEnvVar, raw, defaultDigestHorizonDays)
		}
	}
	return &DigestService{
		DB:         db,
		Scheduler:  s,
		Producer:   producer,
		horizon:    horizon,
		appContext: ctx,
	}, nil
}

// Start registers the cron job and starts the scheduler.
func (s *DigestService) Start() error {
	cronExpr := os.Getenv(digestCronEnvVar)
	if cronExpr == "" {
		cronExpr = defaultDigestCron
	}
	job, err := s.Scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.runScheduledDigest),
		gocron.WithName("reminder-digest"),
		gocron.WithTags("digest"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder digest with cron %q: %w", cronExpr, err)
	}
	s.Scheduler.Start()

	logMessage := fmt.Sprintf("DigestService started with cron '%s'. gocron Job ID: %s", cronExpr, job.ID())
	if nextRun, errNextRun := job.NextRun(); errNextRun != nil {
		logMessage += fmt.Sprintf(", Next Run: (error: %v)", errNextRun)
	} else {
		logMessage += fmt.Sprintf(", Next Run: %s", nextRun.Format(time.RFC3339))
	}
	log.Println(logMessage)
	return nil
}

// Stop shuts the scheduler down.
func (s *DigestService) Stop() {
	log.Println("DigestService stopping...")
	if err := s.Scheduler.Shutdown(); err != nil {
		log.Printf("Error shutting down gocron scheduler: %v", err)
	} else {
		log.Println("Gocron scheduler shut down successfully.")
	}
}

func (s *DigestService) runScheduledDigest() {
	count, err := s.PublishDigest(s.appContext, time.Now())
	if err != nil {
		log.Printf("DigestService: digest run failed: %v", err)
		return
	}
	log.Printf("DigestService: digest run published %d reminder(s)", count)
}

// PublishDigest sends one reminder per pending task due on or before
// now + horizon. Overdue tasks are included and arrive marked OVERDUE.
// Exported so the admin endpoint can trigger a run outside the cron.
func (s *DigestService) PublishDigest(ctx context.Context, now time.Time) (int, error) {
	cutoff := models.DateOnly(now).AddDate(0, 0, s.horizon)
	var records []homedb.Task
	err := s.DB.
		Where("status = ? AND due_date <= ?", string(models.StatusPending), cutoff).
		Order("due_date asc").
		Find(&records).Error
	if err != nil {
		return 0, fmt.Errorf("failed to collect digest tasks: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		task := record.ToModel()
		payload := events.ReminderPayload{
			TaskID:   task.ID,
			Title:    task.Title,
			DueDate:  models.FormatDate(task.DueDate),
			Status:   string(models.EffectiveStatus(task, now)),
			Priority: string(task.Priority),
			Category: task.Category,
		}
		value, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			log.Printf("DigestService: failed to marshal reminder for task %s: %v", task.ID, marshalErr)
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(task.ID), Value: value})
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()
	if err := s.Producer.WriteMessages(writeCtx, msgs...); err != nil {
		return 0, fmt.Errorf("failed to publish reminder digest: %w", err)
	}
	return len(msgs), nil
}
