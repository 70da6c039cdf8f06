package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

type assetResponse struct {
	Asset models.Asset  `json:"asset"`
	Tasks []models.Task `json:"tasks"`
}

// TestCreateAssetAPI_SchedulesCareTasks registers a refrigerator after
// onboarding and expects its two care tasks tagged and spread onto
// weekends after the starter batch.
func TestCreateAssetAPI_SchedulesCareTasks(t *testing.T) {
	dbFilePath := apiTestDBFile("asset_create")
	router, gormDB, _ := setupHomeApp(t, dbFilePath)
	defer teardownHomeApp(gormDB, t, dbFilePath)

	onboardHousehold(t, router, models.HomeTypeCondo)

	before := time.Now()
	resp := performJSON(t, router, "POST", "/assets", map[string]interface{}{
		"name":     "Kitchen Fridge",
		"category": "Refrigerator",
		"brand":    "LG",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode(), "asset create failed: %s", resp.Body())
	var out assetResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))

	assert.NotEmpty(t, out.Asset.ID)
	assert.Equal(t, "Kitchen Fridge", out.Asset.Name)
	require.Len(t, out.Tasks, 2)
	for _, task := range out.Tasks {
		assert.Equal(t, out.Asset.ID, task.AssetID, "task %q", task.Title)
		assert.Equal(t, models.StatusPending, task.Status)
		assert.Equal(t, time.Saturday, task.DueDate.Weekday(), "task %q due %s", task.Title, task.DueDate)
		assert.True(t, task.DueDate.After(before))
	}
	findTask(t, out.Tasks, "Clean Coils")
	findTask(t, out.Tasks, "Replace Water Filter")

	assert.Len(t, listTasks(t, router, "?asset_id="+out.Asset.ID), 2)
	assert.Len(t, listTasks(t, router, ""), 5)
}

func TestCreateAssetAPI_UnknownCategory(t *testing.T) {
	dbFilePath := apiTestDBFile("asset_unknown")
	router, gormDB, _ := setupHomeApp(t, dbFilePath)
	defer teardownHomeApp(gormDB, t, dbFilePath)

	resp := performJSON(t, router, "POST", "/assets", map[string]interface{}{
		"name":     "Fish Tank",
		"category": "Aquarium",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	var out assetResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Empty(t, out.Tasks, "no catalogue entry, no tasks")
	assert.Empty(t, listTasks(t, router, ""))

	resp = performJSON(t, router, "GET", "/assets", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	var assets []models.Asset
	require.NoError(t, json.Unmarshal(resp.Body(), &assets))
	assert.Len(t, assets, 1)
}

func TestGetAssetByIDAPI(t *testing.T) {
	dbFilePath := apiTestDBFile("asset_get")
	router, gormDB, _ := setupHomeApp(t, dbFilePath)
	defer teardownHomeApp(gormDB, t, dbFilePath)

	resp := performJSON(t, router, "POST", "/assets", map[string]interface{}{
		"name":     "Bosch Dishwasher",
		"category": "Dishwasher",
		"model":    "SHEM63W55N",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	var created assetResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &created))

	resp = performJSON(t, router, "GET", "/assets/"+created.Asset.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	var fetched models.Asset
	require.NoError(t, json.Unmarshal(resp.Body(), &fetched))
	assert.Equal(t, created.Asset.ID, fetched.ID)
	assert.Equal(t, "SHEM63W55N", fetched.Model)

	resp = performJSON(t, router, "GET", "/assets/no-such-asset", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

// TestDeleteAssetAPI_CascadesTasks removes an asset and expects every
// task referencing it gone, completed history and spawned follow-ups
// included, while unrelated tasks survive.
func TestDeleteAssetAPI_CascadesTasks(t *testing.T) {
	dbFilePath := apiTestDBFile("asset_delete")
	router, gormDB, _ := setupHomeApp(t, dbFilePath)
	defer teardownHomeApp(gormDB, t, dbFilePath)

	resp := performJSON(t, router, "POST", "/assets", map[string]interface{}{
		"name":     "Kitchen Fridge",
		"category": "Refrigerator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	var out assetResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	require.Len(t, out.Tasks, 2)

	keeper := createTask(t, router, map[string]interface{}{
		"title":    "Sweep Garage",
		"due_date": "2031-05-01",
	})

	// Completing one care task leaves history plus a spawned follow-up,
	// all tagged with the asset.
	coils := findTask(t, out.Tasks, "Clean Coils")
	resp = performJSON(t, router, "POST", "/tasks/"+coils.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp = performJSON(t, router, "DELETE", "/assets/"+out.Asset.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	var deleted struct {
		Message      string `json:"message"`
		DeletedTasks int    `json:"deleted_tasks"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &deleted))
	assert.Equal(t, "Asset deleted", deleted.Message)
	assert.Equal(t, 3, deleted.DeletedTasks)

	remaining := listTasks(t, router, "")
	require.Len(t, remaining, 1)
	assert.Equal(t, keeper.ID, remaining[0].ID)

	resp = performJSON(t, router, "GET", "/assets/"+out.Asset.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestDeleteAssetAPI_Unknown(t *testing.T) {
	dbFilePath := apiTestDBFile("asset_delete_missing")
	router, gormDB, _ := setupHomeApp(t, dbFilePath)
	defer teardownHomeApp(gormDB, t, dbFilePath)

	resp := performJSON(t, router, "DELETE", "/assets/no-such-asset", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}
