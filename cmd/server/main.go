package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/onos231/Afromarket/internal/chat"
	"github.com/onos231/Afromarket/internal/config"
	"github.com/onos231/Afromarket/internal/db"
	"github.com/onos231/Afromarket/internal/middleware"
	"github.com/onos231/Afromarket/internal/offer"
	"github.com/onos231/Afromarket/internal/user"
	"github.com/onos231/Afromarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	database, err := db.NewDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()
	log.Info("connected to PostgreSQL")

	if err := database.AutoMigrate(ctx); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("database schema initialized")

	// Redis is optional: without it the chat hub fans out locally, which is
	// all a single-instance deployment needs.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		log.Info("connected to Redis")
	}

	userRepo := user.NewRepository(database.Pool)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	offerStore := offer.NewStore(database.Pool)
	offerService := offer.NewService(offerStore)
	offerHandler := offer.NewHandler(offerService)

	chatRepo := chat.NewRepository(database.Pool)
	hub := chat.NewHub(chatRepo, redisClient, log)
	chatHandler := chat.NewHandler(hub, chatRepo, offerService)

	go hub.Run(ctx)

	authMiddleware := middleware.NewAuthMiddleware(userService)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public routes
	r.Post("/signup", userHandler.Signup)
	r.Post("/login", userHandler.Login)
	r.Get("/offers", offerHandler.List)
	r.Get("/offers/{id}", offerHandler.Get)
	r.Get("/offers/{id}/chat", chatHandler.GetMessages)
	r.Get("/ws/chat/{id}", chatHandler.ServeWs)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)

		r.Post("/offers", offerHandler.Create)
		r.Get("/offers/my", offerHandler.ListMine)
		r.Get("/offers/active", offerHandler.ListActive)
		r.Get("/offers/history", offerHandler.ListHistory)
		r.Get("/offers/matches", offerHandler.ListMatches)
		r.Get("/offers/matches/full", offerHandler.ListFullMatches)

		r.Patch("/offers/{id}/complete", offerHandler.Complete)
		r.Patch("/offers/{id}/decline", offerHandler.Decline)
		r.Post("/offers/{id}/generate-code", offerHandler.GenerateCode)
		r.Post("/offers/{id}/confirm-code", offerHandler.ConfirmCode)
		r.Post("/offers/{id}/decline-swap", offerHandler.DeclineSwap)

		r.Delete("/offers/history/clear", offerHandler.ClearHistory)
		r.Delete("/offers/history/{id}", offerHandler.DeleteHistoryItem)

		r.Post("/offers/{id}/chat", chatHandler.PostMessage)
	})

	log.WithField("addr", cfg.Addr).Info("server starting")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
