package db

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDBFile := "test_home_gorm.db"
	_ = os.Remove(testDBFile)

	gormDB, err := gorm.Open(sqlite.Open(testDBFile), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := gormDB.AutoMigrate(AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return gormDB
}

func teardownTestDB(gormDB *gorm.DB, t *testing.T) {
	sqlDB, err := gormDB.DB()
	if err == nil {
		if err = sqlDB.Close(); err != nil {
			t.Logf("Warning: could not close test DB: %v", err)
		}
	}
	err = os.Remove("test_home_gorm.db")
	if err != nil && !os.IsNotExist(err) {
		t.Logf("Warning: could not remove test DB file: %v", err)
	}
}

func TestTaskRecordCRUD(t *testing.T) {
	gormDB := setupTestDB(t)
	defer teardownTestDB(gormDB, t)

	// Create
	task := Task{
		ID:        models.NewID(),
		Title:     "Flush Water Heater",
		DueDate:   time.Date(2031, time.March, 29, 0, 0, 0, 0, time.UTC),
		Status:    string(models.StatusPending),
		Priority:  string(models.PriorityMedium),
		Category:  "Plumbing",
		Recurring: true,
	}
	result := gormDB.Create(&task)
	assert.NoError(t, result.Error)

	// Read
	var fetched Task
	result = gormDB.First(&fetched, "id = ?", task.ID)
	assert.NoError(t, result.Error)
	assert.Equal(t, task.Title, fetched.Title)
	assert.True(t, fetched.DueDate.Equal(task.DueDate))
	assert.Nil(t, fetched.CompletedDate)

	// Update
	cost := 85.0
	completedAt := time.Date(2031, time.March, 29, 14, 0, 0, 0, time.UTC)
	fetched.Status = string(models.StatusCompleted)
	fetched.ActualCost = &cost
	fetched.CompletedDate = &completedAt
	result = gormDB.Save(&fetched)
	assert.NoError(t, result.Error)

	var updated Task
	gormDB.First(&updated, "id = ?", task.ID)
	assert.Equal(t, string(models.StatusCompleted), updated.Status)
	if assert.NotNil(t, updated.ActualCost) {
		assert.Equal(t, cost, *updated.ActualCost)
	}
	if assert.NotNil(t, updated.CompletedDate) {
		assert.True(t, updated.CompletedDate.Equal(completedAt))
	}

	// Delete
	result = gormDB.Delete(&updated)
	assert.NoError(t, result.Error)

	var deleted Task
	result = gormDB.First(&deleted, "id = ?", task.ID)
	assert.Error(t, result.Error)
	assert.Equal(t, gorm.ErrRecordNotFound, result.Error)
}

func TestHouseholdRecordSingleRow(t *testing.T) {
	gormDB := setupTestDB(t)
	defer teardownTestDB(gormDB, t)

	household := NewHouseholdRecord(models.Household{
		ID:          models.NewID(),
		HomeType:    models.HomeTypeHouse,
		Location:    "Toronto, ON",
		YearBuilt:   1998,
		OnboardedAt: time.Date(2031, time.March, 5, 12, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, gormDB.Create(&household).Error)

	var count int64
	gormDB.Model(&Household{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var fetched Household
	assert.NoError(t, gormDB.First(&fetched).Error)
	model := fetched.ToModel()
	assert.Equal(t, models.HomeTypeHouse, model.HomeType)
	assert.Equal(t, 1998, model.YearBuilt)
}

func TestTaskConversionRoundTrip(t *testing.T) {
	cost := 42.5
	completedAt := time.Date(2031, time.April, 1, 9, 30, 0, 0, time.UTC)
	original := models.Task{
		ID:            models.NewID(),
		Title:         "Clean Gutters",
		Description:   "Front and back runs",
		Importance:    "Clogged gutters overflow into the foundation.",
		DueDate:       time.Date(2031, time.October, 15, 0, 0, 0, 0, time.UTC),
		Status:        models.StatusCompleted,
		Priority:      models.PriorityMedium,
		Category:      "Exterior",
		AssetID:       "asset-7",
		Recurring:     true,
		Season:        models.SeasonLateFall,
		ActualCost:    &cost,
		CompletedDate: &completedAt,
	}

	back := NewTaskRecord(original).ToModel()
	assert.Equal(t, original, back)
}

func TestProjectConversionKeepsNilCost(t *testing.T) {
	original := models.Project{
		ID:     models.NewID(),
		Title:  "Finish Basement",
		Status: models.ProjectStatusIdea,
	}
	back := NewProjectRecord(original).ToModel()
	assert.Equal(t, original, back)
	assert.Nil(t, back.EstimatedCost)
}

func TestTaskModelsPreservesOrder(t *testing.T) {
	records := []Task{
		{ID: "a", Title: "First", Status: string(models.StatusPending)},
		{ID: "b", Title: "Second", Status: string(models.StatusPending)},
	}
	out := TaskModels(records)
	assert.Len(t, out, 2)
	assert.Equal(t, "First", out[0].Title)
	assert.Equal(t, "Second", out[1].Title)
}
