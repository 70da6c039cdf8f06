package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/templates"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// ErrAlreadyOnboarded is returned when onboarding runs against a household
// that already exists. The service keeps exactly one household.
var ErrAlreadyOnboarded = errors.New("household is already onboarded")

// ScheduleService owns schedule generation: onboarding a household and
// registering assets, both of which expand catalogue templates into dated
// tasks through the oracle-assisted scheduler.
type ScheduleService struct {
	DB       *gorm.DB
	Producer events.Producer
	Oracle   scheduling.Oracle
	Catalog  *templates.Catalog
}

func NewScheduleService(db *gorm.DB, producer events.Producer, oracle scheduling.Oracle, catalog *templates.Catalog) *ScheduleService {
	return &ScheduleService{DB: db, Producer: producer, Oracle: oracle, Catalog: catalog}
}

// Onboard creates the household and schedules its starter tasks. The
// starter batch begins at load-spread slot zero.
func (s *ScheduleService) Onboard(ctx context.Context, homeType models.HomeType, location string, yearBuilt int, now time.Time) (models.Household, []models.Task, error) {
	var count int64
	if err := s.DB.Model(&homedb.Household{}).Count(&count).Error; err != nil {
		return models.Household{}, nil, fmt.Errorf("failed to check for an existing household: %w", err)
	}
	if count > 0 {
		return models.Household{}, nil, ErrAlreadyOnboarded
	}

	household := models.Household{
		ID:          models.NewID(),
		HomeType:    homeType,
		Location:    location,
		YearBuilt:   yearBuilt,
		OnboardedAt: now,
	}
	hctx := scheduling.Context{HomeType: homeType, Location: location, Now: now}
	tasks := scheduling.ScheduleWithOracle(ctx, s.Oracle, s.Catalog.Starter(homeType), hctx, 0)

	record := homedb.NewHouseholdRecord(household)
	if err := s.DB.Create(&record).Error; err != nil {
		return models.Household{}, nil, fmt.Errorf("failed to save household: %w", err)
	}
	if err := s.insertTasks(tasks); err != nil {
		return models.Household{}, nil, err
	}
	log.Printf("ScheduleService: onboarded %s household in %q with %d starter tasks", homeType, location, len(tasks))

	s.publishCreated(ctx, tasks)
	return household, tasks, nil
}

// AddAsset registers an asset and schedules its care tasks. The new batch
// continues load-spreading after the household's current pending tasks so
// asset work lands on later weekends instead of piling onto booked ones.
func (s *ScheduleService) AddAsset(ctx context.Context, asset models.Asset, now time.Time) (models.Asset, []models.Task, error) {
	if asset.ID == "" {
		asset.ID = models.NewID()
	}

	pending, err := s.pendingCount()
	if err != nil {
		return models.Asset{}, nil, err
	}
	household, _, err := loadHousehold(s.DB)
	if err != nil {
		return models.Asset{}, nil, err
	}
	hctx := scheduling.Context{HomeType: household.HomeType, Location: household.Location, Now: now}
	tasks := scheduling.ScheduleWithOracle(ctx, s.Oracle, s.Catalog.ForAsset(asset.ID, asset.Category), hctx, int(pending))

	record := homedb.NewAssetRecord(asset)
	if err := s.DB.Create(&record).Error; err != nil {
		return models.Asset{}, nil, fmt.Errorf("failed to save asset: %w", err)
	}
	if err := s.insertTasks(tasks); err != nil {
		return models.Asset{}, nil, err
	}
	log.Printf("ScheduleService: registered asset %q (%s) with %d care tasks", asset.Name, asset.Category, len(tasks))

	s.publishCreated(ctx, tasks)
	return asset, tasks, nil
}

func (s *ScheduleService) insertTasks(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	records := make([]homedb.Task, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, homedb.NewTaskRecord(task))
	}
	if err := s.DB.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save scheduled tasks: %w", err)
	}
	return nil
}

func (s *ScheduleService) publishCreated(ctx context.Context, tasks []models.Task) {
	payloads := make([]events.TaskEventPayload, 0, len(tasks))
	for _, task := range tasks {
		payloads = append(payloads, taskEvent(events.EventTaskCreated, task))
	}
	publishTaskEvents(ctx, s.Producer, payloads...)
}

// pendingCount is the number of stored PENDING tasks, used as the
// load-spread start index for incremental batches.
func (s *ScheduleService) pendingCount() (int64, error) {
	var count int64
	err := s.DB.Model(&homedb.Task{}).
		Where("status = ?", string(models.StatusPending)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return count, nil
}

// loadHousehold fetches the single household row if one exists.
func loadHousehold(db *gorm.DB) (models.Household, bool, error) {
	var record homedb.Household
	if err := db.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Household{}, false, nil
		}
		return models.Household{}, false, fmt.Errorf("failed to load household: %w", err)
	}
	return record.ToModel(), true, nil
}
