package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/score"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/services"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

type HouseholdHandler struct {
	DB       *gorm.DB
	Schedule *services.ScheduleService
}

func NewHouseholdHandler(db *gorm.DB, schedule *services.ScheduleService) *HouseholdHandler {
	return &HouseholdHandler{DB: db, Schedule: schedule}
}

type OnboardRequest struct {
	HomeType  string `json:"home_type" validate:"required"`
	Location  string `json:"location" validate:"required"`
	YearBuilt int    `json:"year_built"`
}

// Onboard creates the household and its starter schedule. A household can
// only be onboarded once; repeats get 409.
func (h *HouseholdHandler) Onboard(ctx context.Context, c *app.RequestContext) {
	var req OnboardRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	homeType := models.HomeType(strings.ToUpper(req.HomeType))
	if !homeType.Valid() {
		c.JSON(http.StatusBadRequest, utils.H{"error": "home_type must be CONDO or HOUSE"})
		return
	}

	household, tasks, err := h.Schedule.Onboard(ctx, homeType, req.Location, req.YearBuilt, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAlreadyOnboarded) {
			c.JSON(http.StatusConflict, utils.H{"error": "Household is already onboarded"})
		} else {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to onboard household: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, utils.H{"household": household, "tasks": tasks})
}

func (h *HouseholdHandler) GetHousehold(ctx context.Context, c *app.RequestContext) {
	var record homedb.Household
	if err := h.DB.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.H{"error": "No household onboarded yet"})
		} else {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch household: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, record.ToModel())
}

// GetScore recomputes the health score from the current rows. Nothing is
// cached or stored; two identical reads return identical breakdowns.
func (h *HouseholdHandler) GetScore(ctx context.Context, c *app.RequestContext) {
	onboarded := true
	var homeType models.HomeType
	var household homedb.Household
	if err := h.DB.First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			onboarded = false
		} else {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch household: " + err.Error()})
			return
		}
	} else {
		homeType = models.HomeType(household.HomeType)
	}

	var taskRecords []homedb.Task
	if err := h.DB.Find(&taskRecords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch tasks: " + err.Error()})
		return
	}
	var assetRecords []homedb.Asset
	if err := h.DB.Find(&assetRecords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch assets: " + err.Error()})
		return
	}

	breakdown := score.Compute(score.Input{
		Tasks:     homedb.TaskModels(taskRecords),
		Assets:    homedb.AssetModels(assetRecords),
		HomeType:  homeType,
		Onboarded: onboarded,
		Now:       time.Now(),
	})
	c.JSON(http.StatusOK, breakdown)
}
