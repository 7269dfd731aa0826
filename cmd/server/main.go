package main

import (
	_ "planboard/docs"
	"planboard/internal/config"
	"planboard/internal/server"

	log "github.com/sirupsen/logrus"
)

// @title           Planboard API
// @version         1.0
// @description     Personal Kanban boards with tasks, cards and provider sign-in.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
