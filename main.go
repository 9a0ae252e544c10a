package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OraComigo/controllers"
	"github.com/OraComigo/initializers"
	"github.com/OraComigo/metrics"
	"github.com/OraComigo/middlewares"
	"github.com/OraComigo/services"
)

func main() {
	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	initializers.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := initializers.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store_driver", cfg.StoreDriver).Msg("Failed to open snapshot backend")
	}

	store := services.NewStore(services.Options{
		Backend:         backend,
		GracesPerPrayer: cfg.GracesPerPrayer,
		EditorEmails:    cfg.EditorEmails,
	})
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close snapshot backend")
		}
	}()

	var push *services.PushNotificationService
	if !cfg.DisablePush {
		push = services.InitPushNotificationService(ctx, cfg.FirebaseServiceAccountPath, store)
	}
	email := services.InitEmailService(cfg.ResendAPIKey, cfg.EmailFrom)

	server := controllers.NewServer(store, services.NewNotifier(push, email).WithInbox(store), cfg.Secret, cfg.TokenTTL)

	srv := &http.Server{
		Addr:    ":" + port(),
		Handler: newRouter(server, store, cfg.Secret),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if err := store.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Final snapshot save failed")
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func newRouter(server *controllers.Server, users middlewares.UserLookup, secret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	getKey := middlewares.ClientKey

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.POST("/login", middlewares.RateLimitMiddleware("login", 2, 2, getKey), server.UserLogin)
	router.POST("/signup", middlewares.RateLimitMiddleware("signup", 2, 2, getKey), server.UserSignup)
	router.GET("/ping", middlewares.RateLimitMiddleware("ping", 2, 2, getKey), controllers.Ping)

	// password reset routes
	router.POST("/auth/forgot-password", middlewares.RateLimitMiddleware("forgot-password", 2, 2, getKey), server.ForgotPassword)
	router.POST("/auth/verify-reset-code", middlewares.RateLimitMiddleware("verify-reset-code", 5, 5, getKey), server.VerifyResetCode)
	router.POST("/auth/reset-password", middlewares.RateLimitMiddleware("reset-password", 2, 2, getKey), server.ResetPassword)

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth(users, secret))
	auth.Use(middlewares.RateLimitMiddleware("auth", 10, 10, getKey))
	{
		// user routes
		auth.GET("/users/me", server.GetUserProfile)
		auth.POST("/users/push-token", server.StorePushToken)

		// notification routes
		auth.GET("/users/me/notifications", server.GetUserNotifications)
		auth.POST("/users/me/notifications/read-all", server.MarkAllNotificationsAsRead)
		auth.PATCH("/users/me/notifications/:notification_id", server.ToggleUserNotificationStatus)
		auth.DELETE("/users/me/notifications/:notification_id", server.DeleteUserNotification)

		// daily schedule routes
		auth.POST("/users/me/schedule", server.AddScheduleSlot)
		auth.PUT("/users/me/schedule/:schedule_id", server.UpdateScheduleSlot)
		auth.DELETE("/users/me/schedule/:schedule_id", server.RemoveScheduleSlot)
		auth.POST("/users/me/schedule/:schedule_id/toggle", server.ToggleSlotCompletion)

		// prayer routes
		auth.GET("/prayers", server.GetPrayers)
		auth.POST("/prayers", server.CreatePrayer)
		auth.GET("/prayers/:prayer_id", server.GetPrayer)
		auth.POST("/prayers/:prayer_id/pray", server.RecordPrayer)
		auth.POST("/prayers/:prayer_id/favorite", server.ToggleFavorite)

		// circulo routes
		auth.GET("/circulos", server.GetCirculos)
		auth.POST("/circulos", server.CreateCirculo)
		auth.GET("/circulos/:circulo_id", server.GetCirculo)
		auth.PATCH("/circulos/:circulo_id", server.UpdateCirculo)
		auth.POST("/circulos/:circulo_id/membership", server.ToggleMembership)

		auth.GET("/circulos/:circulo_id/members", server.GetCirculoMembers)
		auth.DELETE("/circulos/:circulo_id/members/:user_id", server.RemoveMember)
		auth.PUT("/circulos/:circulo_id/moderators/:user_id", server.SetModeratorRole)

		auth.POST("/circulos/:circulo_id/schedule", server.AddScheduleItem)
		auth.PUT("/circulos/:circulo_id/schedule/:item_id", server.UpdateScheduleItem)
		auth.DELETE("/circulos/:circulo_id/schedule/:item_id", server.DeleteScheduleItem)

		// post routes
		auth.GET("/circulos/:circulo_id/posts", server.GetCirculoFeed)
		auth.POST("/circulos/:circulo_id/posts", server.CreatePost)
		auth.POST("/circulos/:circulo_id/posts/:post_id/replies", server.CreateReply)
		auth.POST("/circulos/:circulo_id/posts/:post_id/reactions", server.React)
		auth.POST("/circulos/:circulo_id/posts/:post_id/pin", server.PinPost)
		auth.DELETE("/circulos/:circulo_id/posts/:post_id", server.DeletePost)

		// editor only routes
		editor := auth.Group("/")
		editor.Use(middlewares.CheckEditor)
		{
			editor.PATCH("/prayers/:prayer_id", server.UpdatePrayer)
			editor.POST("/prayers/:prayer_id/approve", server.ApprovePrayer)
		}
	}

	return router
}
