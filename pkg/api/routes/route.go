package routes

import (
	"github.com/gin-gonic/gin"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wolfhost/botpanel-backend/pkg/api/handlers"
	"github.com/wolfhost/botpanel-backend/pkg/api/servers"
	"github.com/wolfhost/botpanel-backend/pkg/services"

	swaggerFiles "github.com/swaggo/files"
)

func SetupRoutes(server *servers.Server, deploymentService *services.DeploymentService) {
	apiV1 := server.Router.Group("/api/v1")
	setupV1Routes(apiV1, deploymentService)

	server.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func setupV1Routes(router *gin.RouterGroup, deploymentService *services.DeploymentService) {
	setupHealthRoutes(router.Group("/health"))
	setupCatalogRoutes(router.Group("/catalog"), deploymentService)
	setupDeploymentRoutes(router.Group("/deployments"), deploymentService)
}

func setupHealthRoutes(router *gin.RouterGroup) {
	handler := handlers.NewHealthHandler()
	router.GET("", handler.GetHealth)
}

func setupCatalogRoutes(router *gin.RouterGroup, deploymentService *services.DeploymentService) {
	handler := handlers.NewCatalogHandler(deploymentService.Catalog())
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
}

func setupDeploymentRoutes(router *gin.RouterGroup, deploymentService *services.DeploymentService) {
	handler := handlers.NewDeploymentHandler(deploymentService)
	router.POST("", handler.Deploy)
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
	router.POST("/:id/stop", handler.Stop)
	router.DELETE("/:id", handler.Delete)
}
