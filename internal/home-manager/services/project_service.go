package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// Brainstormer supplies improvement project ideas. Implementations may
// fail arbitrarily; the service degrades to its built-in list.
type Brainstormer interface {
	BrainstormProjects(ctx context.Context, theme string, homeType models.HomeType, location string) ([]models.ProjectIdea, error)
}

// builtinIdeas is served whenever the oracle cannot suggest anything.
var builtinIdeas = []models.ProjectIdea{
	{Title: "Refresh Interior Paint", Description: "Repaint the highest-traffic room; modern low-VOC paint covers in one weekend."},
	{Title: "Upgrade to a Smart Thermostat", Description: "Cuts heating and cooling costs and exposes HVAC runtime trends."},
	{Title: "Replace Weatherstripping", Description: "Seal exterior door drafts before the heating season."},
	{Title: "Install Closet Organizers", Description: "Double usable storage in the main bedroom closet with wire shelving."},
	{Title: "Add a Rain Barrel", Description: "Capture downspout runoff for garden watering."},
	{Title: "Swap Builder-Grade Light Fixtures", Description: "Update the entryway and hallway fixtures for an immediate visual lift."},
}

// ProjectService is the record store for improvement projects plus the
// idea brainstorm endpoint behind it.
type ProjectService struct {
	DB    *gorm.DB
	Ideas Brainstormer
}

func NewProjectService(db *gorm.DB, ideas Brainstormer) *ProjectService {
	return &ProjectService{DB: db, Ideas: ideas}
}

// ProjectUpdate carries the editable project fields. Nil fields are left
// alone.
type ProjectUpdate struct {
	Title         *string
	Description   *string
	Status        *models.ProjectStatus
	EstimatedCost *float64
}

func (s *ProjectService) CreateProject(project models.Project) (models.Project, error) {
	if project.ID == "" {
		project.ID = models.NewID()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusIdea
	}
	record := homedb.NewProjectRecord(project)
	if err := s.DB.Create(&record).Error; err != nil {
		return models.Project{}, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects() ([]models.Project, error) {
	var records []homedb.Project
	if err := s.DB.Order("created_at asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return homedb.ProjectModels(records), nil
}

func (s *ProjectService) GetProject(projectID string) (models.Project, bool, error) {
	var record homedb.Project
	if err := s.DB.First(&record, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, false, nil
		}
		return models.Project{}, false, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	return record.ToModel(), true, nil
}

func (s *ProjectService) UpdateProject(projectID string, update ProjectUpdate) (models.Project, bool, error) {
	var record homedb.Project
	if err := s.DB.First(&record, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, false, nil
		}
		return models.Project{}, false, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	fields := make(map[string]interface{})
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.EstimatedCost != nil {
		fields["estimated_cost"] = *update.EstimatedCost
	}
	if len(fields) > 0 {
		if err := s.DB.Model(&record).Updates(fields).Error; err != nil {
			return models.Project{}, false, fmt.Errorf("failed to update project %s: %w", projectID, err)
		}
	}
	return record.ToModel(), true, nil
}

func (s *ProjectService) DeleteProject(projectID string) (bool, error) {
	res := s.DB.Delete(&homedb.Project{}, "id = ?", projectID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete project %s: %w", projectID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SuggestIdeas asks the oracle for themed project ideas and serves the
// built-in list when it cannot answer. It never fails: a missing
// household, a nil oracle, an oracle error, and an empty answer all
// degrade the same way.
func (s *ProjectService) SuggestIdeas(ctx context.Context, theme string) []models.ProjectIdea {
	if s.Ideas == nil {
		return builtinIdeaList()
	}
	household, found, err := loadHousehold(s.DB)
	if err != nil {
		log.Printf("ProjectService: failed to load household for brainstorm, continuing without context: %v", err)
	}
	if !found {
		household = models.Household{}
	}

	ideas, err := s.Ideas.BrainstormProjects(ctx, theme, household.HomeType, household.Location)
	if err != nil {
		log.Printf("ProjectService: brainstorm failed, serving built-in ideas: %v", err)
		return builtinIdeaList()
	}
	if len(ideas) == 0 {
		return builtinIdeaList()
	}
	return ideas
}

func builtinIdeaList() []models.ProjectIdea {
	ideas := make([]models.ProjectIdea, len(builtinIdeas))
	copy(ideas, builtinIdeas)
	return ideas
}
