package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hirfa/internal/seed"
	"hirfa/pkg/client"
	"hirfa/pkg/logger"
)

const seedHealthTimeout = 30 * time.Second

func main() {
	log := logger.New(logger.Config{
		Level:   logger.INFO,
		Format:  logger.JSON,
		Service: "seed",
	})

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewMarketplaceClient(baseURL)
	if err := api.HTTP().WaitForHealthy(ctx, seedHealthTimeout); err != nil {
		log.Fatal("Marketplace is not reachable", "base_url", baseURL, "error", err)
	}

	input := map[string]any{
		seed.InputCraftsmen: envInt("SEED_CRAFTSMEN"),
		seed.InputCustomers: envInt("SEED_CUSTOMERS"),
		seed.InputPassword:  os.Getenv("SEED_PASSWORD"),
	}

	engine := seed.NewEngine(seed.DemoFlow{})
	if err := engine.Run(ctx, seed.DemoFlowName, seed.NewContext(input, api, log)); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
	log.Info("Seeding completed", "base_url", baseURL)
}

func envInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}
