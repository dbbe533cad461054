package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wolfhost/botpanel-backend/docs"
	"github.com/wolfhost/botpanel-backend/internal/logger"
	"github.com/wolfhost/botpanel-backend/pkg/api/routes"
	"github.com/wolfhost/botpanel-backend/pkg/api/servers"
	"github.com/wolfhost/botpanel-backend/pkg/catalog"
	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/infrastructure/postgres/connection"
	postgresRepositories "github.com/wolfhost/botpanel-backend/pkg/infrastructure/postgres/repositories"
	"github.com/wolfhost/botpanel-backend/pkg/panel"
	"github.com/wolfhost/botpanel-backend/pkg/registry"
	"github.com/wolfhost/botpanel-backend/pkg/services"
	"github.com/wolfhost/botpanel-backend/pkg/taskmanager"
)

// @title           Bot Panel Backend
// @version         1.0
// @description     Bot deployment control-panel API

// @BasePath  /api/v1
func main() {

	logger.Init()

	// Load .env file if it exists (optional for Docker runtime)
	if err := godotenv.Load(".env"); err != nil {
		logger.Infof("No .env file found, using environment variables: %s", err)
	}

	port := os.Getenv("PORT")

	if port == "" {
		port = "8000"
	}

	// Durable storage is optional; the in-memory registry stays
	// authoritative either way.
	var sink registry.PersistenceSink
	var repository *postgresRepositories.DeploymentRepository
	postgresHost := os.Getenv("POSTGRES_HOST")
	server := servers.NewServer(nil)
	if postgresHost != "" {
		postgresDB, err := connection.Init(
			os.Getenv("POSTGRES_USER"),
			postgresHost,
			os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("POSTGRES_DB"),
			os.Getenv("POSTGRES_PORT"),
		)
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		server.PostgresDB = postgresDB
		repository = postgresRepositories.NewDeploymentRepository(postgresDB)
		sink = repository
	}

	deploymentRegistry := registry.New(sink)
	if repository != nil {
		records, err := repository.LoadDeployments()
		if err != nil {
			logger.Warn("Failed to load persisted deployments", zap.Error(err))
		} else {
			deploymentRegistry.Restore(records)
		}
	}

	backend := entities.BackendKind(os.Getenv("DEPLOY_BACKEND"))
	if backend == "" {
		backend = entities.BackendLocal
	}

	panelMemory, _ := strconv.Atoi(os.Getenv("PANEL_MEMORY_MB"))
	panelClient := panel.New(panel.Config{
		BaseURL:  os.Getenv("PANEL_URL"),
		APIKey:   os.Getenv("PANEL_API_KEY"),
		MemoryMB: panelMemory,
	})

	deploymentService := services.NewDeploymentService(
		deploymentRegistry,
		catalog.NewStaticSource(catalog.DefaultEntries()),
		nil,
		panelClient,
		taskmanager.NewTaskManager(5, 20),
		services.Config{Backend: backend},
	)

	// programmatically set swagger info
	docs.SwaggerInfo.Title = "Bot Panel Backend"
	docs.SwaggerInfo.Description = "Bot deployment control-panel API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Schemes = []string{"http"}
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%s", port)
	docs.SwaggerInfo.BasePath = "/api/v1"

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"*"}

	server.Use(cors.New(config))

	routes.SetupRoutes(server, deploymentService)

	err := server.Start(port)
	if err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		log.Fatal(err)
	}
}
