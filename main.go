// @title SkillVerify Backend API
// @version 1.0
// @description Assessment integrity engine: session-held answer keys, sandboxed code grading and verifiable credentials.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"skillverify_backend/internal/app"
	"skillverify_backend/internal/config"
	"skillverify_backend/pkg/configwatcher"
	"skillverify_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
