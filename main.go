package main

import (
	"log"

	safety "aparajita/cmd/safety-service"
	"aparajita/internal/common/config"
	"aparajita/internal/common/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	defer logger.Sync()

	if err := safety.Run(cfg); err != nil {
		log.Fatalf("safety service error: %v", err)
	}
}
