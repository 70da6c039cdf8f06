package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/route"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/services"
)

// RegisterRoutes wires every endpoint onto the engine. Tests register the
// exact routes the binary serves.
func RegisterRoutes(
	r *route.Engine,
	household *HouseholdHandler,
	tasks *TaskHandler,
	assets *AssetHandler,
	projects *ProjectHandler,
	digest *services.DigestService,
) {
	householdGroup := r.Group("/household")
	{
		householdGroup.POST("", household.Onboard)
		householdGroup.GET("", household.GetHousehold)
	}
	r.GET("/score", household.GetScore)
	r.GET("/calendar.ics", tasks.GetCalendar)

	taskGroup := r.Group("/tasks")
	{
		taskGroup.POST("", tasks.CreateTask)
		taskGroup.GET("", tasks.GetTasks)
		taskGroup.DELETE("", tasks.DeleteAllTasks)
		taskGroup.GET("/:id", tasks.GetTaskByID)
		taskGroup.PUT("/:id", tasks.UpdateTask)
		taskGroup.DELETE("/:id", tasks.DeleteTask)
		taskGroup.POST("/:id/complete", tasks.CompleteTask)
		taskGroup.GET("/:id/calendar.ics", tasks.GetTaskCalendar)
	}

	assetGroup := r.Group("/assets")
	{
		assetGroup.POST("", assets.CreateAsset)
		assetGroup.GET("", assets.GetAssets)
		assetGroup.GET("/:id", assets.GetAssetByID)
		assetGroup.DELETE("/:id", assets.DeleteAsset)
	}

	projectGroup := r.Group("/projects")
	{
		projectGroup.POST("", projects.CreateProject)
		projectGroup.GET("", projects.GetProjects)
		projectGroup.GET("/ideas", projects.GetProjectIdeas)
		projectGroup.GET("/:id", projects.GetProjectByID)
		projectGroup.PUT("/:id", projects.UpdateProject)
		projectGroup.DELETE("/:id", projects.DeleteProject)
	}

	adminGroup := r.Group("/admin")
	adminGroup.POST("/digest/run", func(ctx context.Context, c *app.RequestContext) {
		count, err := digest.PublishDigest(ctx, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.H{"error": "Digest run failed: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, utils.H{"message": "Digest triggered", "reminders": count})
	})

	r.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, utils.H{"message": "pong"})
	})
}
