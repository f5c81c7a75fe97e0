// Package routes wires repositories, services and handlers onto the
// fiber app. This is the composition root: the balance cache is
// constructed once here and shared by the ledger engine and the
// balance read side.
package routes

import (
	"payvault/internal/config"
	"payvault/internal/handlers"
	"payvault/internal/middleware"
	"payvault/internal/repositories"
	"payvault/internal/repositories/cache"
	"payvault/internal/services/auth"
	"payvault/internal/services/balance"
	"payvault/internal/services/funding"
	"payvault/internal/services/history"
	"payvault/internal/services/ledger"
	"payvault/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	ledgerRepo := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db)

	balanceCache := newBalanceCache()

	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo)
	ledgerService := ledger.NewService(ledgerRepo, userService, balanceCache)
	balanceService := balance.NewService(ledgerRepo, balanceCache)
	historyService := history.NewService(ledgerRepo)

	var fundingSource funding.Source
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		fundingSource = funding.NewStripeSource(key)
	}

	authHandler := handlers.NewAuthHandler(authService, userService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	transferHandler := handlers.NewTransferHandler(ledgerService, historyService, fundingSource)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Everything registered after this point requires a valid token.
	api.Use(authMiddleware.Handler)
	api.Post("/logout", authHandler.Logout)
	api.Post("/change-password", authHandler.ChangePassword)
	api.Get("/balance", balanceHandler.GetBalance)
	api.Post("/transfers", transferHandler.CreateTransfer)
	api.Post("/deposits", transferHandler.Deposit)
	api.Get("/transfers", transferHandler.ListTransfers)
	api.Get("/transfers/:id", transferHandler.GetTransfer)
}

// newBalanceCache picks the Redis backend when an address is
// configured and falls back to the in-process TTL cache otherwise.
func newBalanceCache() cache.BalanceCache {
	ttl := config.BalanceCacheTTL()
	if addr := config.GetEnv("REDIS_ADDR", ""); addr != "" {
		client := cache.NewRedisClient(
			addr,
			config.GetEnv("REDIS_PASSWORD", ""),
			config.GetIntEnv("REDIS_DB", 0),
		)
		return cache.NewRedisBalanceCache(client, ttl)
	}
	return cache.NewMemoryBalanceCache(ttl)
}
