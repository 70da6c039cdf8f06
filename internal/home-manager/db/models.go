// Package db defines the persistence records for the home manager and
// their conversions to and from the domain types. Records carry string
// uuid primary keys issued by the domain layer, never by the database.
package db

import (
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// Household is the persistence record for the onboarding profile. The
// service keeps at most one row.
type Household struct {
	ID          string `gorm:"primaryKey"`
	HomeType    string
	Location    string
	YearBuilt   int
	OnboardedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task is the persistence record for a task instance. Status holds only
// PENDING or COMPLETED; OVERDUE is derived at read time and never stored.
type Task struct {
	ID            string    `gorm:"primaryKey"`
	Title         string    `gorm:"index"`
	Description   string
	Importance    string
	DueDate       time.Time `gorm:"index"`
	Status        string    `gorm:"index"`
	Priority      string
	Category      string `gorm:"index"`
	AssetID       string `gorm:"index"`
	Recurring     bool
	Season        string
	ActualCost    *float64
	CompletedDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Asset is the persistence record for a tracked appliance or system.
type Asset struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Category  string `gorm:"index"`
	Brand     string
	Model     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project is the persistence record for an improvement project.
type Project struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	Description   string
	Status        string `gorm:"index"`
	EstimatedCost *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllModels lists every record for auto-migration.
func AllModels() []interface{} {
	return []interface{}{&Household{}, &Task{}, &Asset{}, &Project{}}
}

// NewTaskRecord converts a domain task for storage.
func NewTaskRecord(m models.Task) Task {
	return Task{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Importance:    m.Importance,
		DueDate:       m.DueDate,
		Status:        string(m.Status),
		Priority:      string(m.Priority),
		Category:      m.Category,
		AssetID:       m.AssetID,
		Recurring:     m.Recurring,
		Season:        string(m.Season),
		ActualCost:    m.ActualCost,
		CompletedDate: m.CompletedDate,
	}
}

// ToModel converts a stored task back to the domain type.
func (t Task) ToModel() models.Task {
	return models.Task{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Importance:    t.Importance,
		DueDate:       t.DueDate,
		Status:        models.TaskStatus(t.Status),
		Priority:      models.TaskPriority(t.Priority),
		Category:      t.Category,
		AssetID:       t.AssetID,
		Recurring:     t.Recurring,
		Season:        models.Season(t.Season),
		ActualCost:    t.ActualCost,
		CompletedDate: t.CompletedDate,
	}
}

// TaskModels converts a result set preserving order.
func TaskModels(records []Task) []models.Task {
	out := make([]models.Task, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToModel())
	}
	return out
}

// NewHouseholdRecord converts a domain household for storage.
func NewHouseholdRecord(m models.Household) Household {
	return Household{
		ID:          m.ID,
		HomeType:    string(m.HomeType),
		Location:    m.Location,
		YearBuilt:   m.YearBuilt,
		OnboardedAt: m.OnboardedAt,
	}
}

// ToModel converts a stored household back to the domain type.
func (h Household) ToModel() models.Household {
	return models.Household{
		ID:          h.ID,
		HomeType:    models.HomeType(h.HomeType),
		Location:    h.Location,
		YearBuilt:   h.YearBuilt,
		OnboardedAt: h.OnboardedAt,
	}
}

// NewAssetRecord converts a domain asset for storage.
func NewAssetRecord(m models.Asset) Asset {
	return Asset{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Brand:    m.Brand,
		Model:    m.Model,
		Notes:    m.Notes,
	}
}

// ToModel converts a stored asset back to the domain type.
func (a Asset) ToModel() models.Asset {
	return models.Asset{
		ID:       a.ID,
		Name:     a.Name,
		Category: a.Category,
		Brand:    a.Brand,
		Model:    a.Model,
		Notes:    a.Notes,
	}
}

// AssetModels converts a result set preserving order.
func AssetModels(records []Asset) []models.Asset {
	out := make([]models.Asset, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToModel())
	}
	return out
}

// NewProjectRecord converts a domain project for storage.
func NewProjectRecord(m models.Project) Project {
	return Project{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Status:        string(m.Status),
		EstimatedCost: m.EstimatedCost,
	}
}

// ToModel converts a stored project back to the domain type.
func (p Project) ToModel() models.Project {
	return models.Project{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Status:        models.ProjectStatus(p.Status),
		EstimatedCost: p.EstimatedCost,
	}
}

// ProjectModels converts a result set preserving order.
func ProjectModels(records []Project) []models.Project {
	out := make([]models.Project, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToModel())
	}
	return out
}
