package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/services"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

type AssetHandler struct {
	DB        *gorm.DB
	Schedule  *services.ScheduleService
	Lifecycle *services.LifecycleService
}

func NewAssetHandler(db *gorm.DB, schedule *services.ScheduleService, lifecycle *services.LifecycleService) *AssetHandler {
	return &AssetHandler{DB: db, Schedule: schedule, Lifecycle: lifecycle}
}

type CreateAssetRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Notes    string `json:"notes"`
}

// CreateAsset registers the asset and schedules its catalogue tasks. A
// category with no catalogue entry registers the asset with zero tasks.
func (h *AssetHandler) CreateAsset(ctx context.Context, c *app.RequestContext) {
	var req CreateAssetRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	asset, tasks, err := h.Schedule.AddAsset(ctx, models.Asset{
		Name:     req.Name,
		Category: req.Category,
		Brand:    req.Brand,
		Model:    req.Model,
		Notes:    req.Notes,
	}, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to register asset: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, utils.H{"asset": asset, "tasks": tasks})
}

func (h *AssetHandler) GetAssets(ctx context.Context, c *app.RequestContext) {
	var records []homedb.Asset
	if err := h.DB.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch assets: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, homedb.AssetModels(records))
}

func (h *AssetHandler) GetAssetByID(ctx context.Context, c *app.RequestContext) {
	var record homedb.Asset
	if err := h.DB.First(&record, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.H{"error": "Asset not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch asset: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, record.ToModel())
}

// DeleteAsset removes the asset and every task referencing it, completed
// history included.
func (h *AssetHandler) DeleteAsset(ctx context.Context, c *app.RequestContext) {
	assetID := c.Param("id")
	var record homedb.Asset
	if err := h.DB.First(&record, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.H{"error": "Asset not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch asset: " + err.Error()})
		}
		return
	}

	deletedTasks, err := h.Lifecycle.DeleteTasksForAsset(ctx, assetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to delete asset tasks: " + err.Error()})
		return
	}
	if err := h.DB.Delete(&homedb.Asset{}, "id = ?", assetID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to delete asset: " + err.Error()})
		return
	}
	log.Printf("AssetHandler: deleted asset %s (%q) and %d of its tasks", assetID, record.Name, deletedTasks)
	c.JSON(http.StatusOK, utils.H{"message": "Asset deleted", "deleted_tasks": deletedTasks})
}
