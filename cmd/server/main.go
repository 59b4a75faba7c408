package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routinestar/internal/config"
	"routinestar/internal/database"
	"routinestar/internal/handlers"
	"routinestar/internal/repository"
	"routinestar/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	familyRepo := repository.NewFamilyRepository(db)
	childRepo := repository.NewChildRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESSenderEmail, familyRepo, childRepo)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(familyRepo, childRepo, cfg.JWTSecret, cfg.TokenDuration)
	familyService := service.NewFamilyService(familyRepo, childRepo)
	routineService := service.NewRoutineService(routineRepo, taskRepo, childRepo)
	ledgerService := service.NewLedgerService(ledgerRepo)
	achievementService := service.NewAchievementService(achievementRepo, emailService)
	sessionService := service.NewSessionService(sessionRepo, taskRepo, routineRepo, childRepo, performanceRepo, ledgerService, achievementService)
	rewardService := service.NewRewardService(rewardRepo, childRepo, ledgerService, emailService)

	// Seed the global achievement rules
	if err := achievementService.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed achievements: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(authService, familyService)
	familyHandler := handlers.NewFamilyHandler(familyService)
	routineHandler := handlers.NewRoutineHandler(routineService)
	sessionHandler := handlers.NewSessionHandler(sessionService, ledgerService, achievementService)
	rewardHandler := handlers.NewRewardHandler(rewardService, ledgerService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/families", authHandler.RegisterFamily)
	mux.HandleFunc("POST /api/auth/child/login", authHandler.ChildLogin)
	mux.HandleFunc("POST /api/auth/parent/login", authHandler.ParentLogin)

	// Parent routes
	mux.HandleFunc("GET /api/family", middleware.RequireParentAuth(familyHandler.GetFamily))
	mux.HandleFunc("PUT /api/family", middleware.RequireParentAuth(familyHandler.UpdateFamily))
	mux.HandleFunc("GET /api/children", middleware.RequireParentAuth(familyHandler.ListChildren))
	mux.HandleFunc("POST /api/children", middleware.RequireParentAuth(familyHandler.CreateChild))
	mux.HandleFunc("POST /api/children/{id}/regenerate-pin", middleware.RequireParentAuth(familyHandler.RegenerateChildPIN))
	mux.HandleFunc("POST /api/children/{id}/adjust", middleware.RequireParentAuth(rewardHandler.AdjustPoints))

	mux.HandleFunc("POST /api/routines", middleware.RequireParentAuth(routineHandler.CreateRoutine))
	mux.HandleFunc("GET /api/routines", middleware.RequireParentAuth(routineHandler.ListRoutines))
	mux.HandleFunc("GET /api/routines/{id}", middleware.RequireParentAuth(routineHandler.GetRoutine))
	mux.HandleFunc("PUT /api/routines/{id}", middleware.RequireParentAuth(routineHandler.UpdateRoutine))
	mux.HandleFunc("DELETE /api/routines/{id}", middleware.RequireParentAuth(routineHandler.DeactivateRoutine))
	mux.HandleFunc("POST /api/routines/{id}/children/{childId}/tasks", middleware.RequireParentAuth(routineHandler.CreateTask))
	mux.HandleFunc("GET /api/routines/{id}/children/{childId}/tasks", middleware.RequireParentAuth(routineHandler.ListTasks))
	mux.HandleFunc("PUT /api/routines/{id}/children/{childId}/task-order", middleware.RequireParentAuth(routineHandler.ReorderTasks))
	mux.HandleFunc("PUT /api/tasks/{id}", middleware.RequireParentAuth(routineHandler.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", middleware.RequireParentAuth(routineHandler.DeleteTask))

	mux.HandleFunc("POST /api/rewards", middleware.RequireParentAuth(rewardHandler.CreateReward))
	mux.HandleFunc("DELETE /api/rewards/{id}", middleware.RequireParentAuth(rewardHandler.DeactivateReward))
	mux.HandleFunc("GET /api/rewards", middleware.RequireParentAuth(rewardHandler.ListRewards))

	// Child routes
	mux.HandleFunc("POST /api/sessions/start", middleware.RequireChildAuth(sessionHandler.StartSession))
	mux.HandleFunc("GET /api/sessions", middleware.RequireChildAuth(sessionHandler.ListSessions))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.RequireChildAuth(sessionHandler.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireChildAuth(sessionHandler.CompleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/skip", middleware.RequireChildAuth(sessionHandler.SkipSession))
	mux.HandleFunc("POST /api/sessions/{id}/tasks/{taskId}/complete", middleware.RequireChildAuth(sessionHandler.CompleteTask))
	mux.HandleFunc("DELETE /api/sessions/{id}/completions/{completionId}", middleware.RequireChildAuth(sessionHandler.UndoTaskCompletion))

	mux.HandleFunc("GET /api/me/balance", middleware.RequireChildAuth(sessionHandler.GetBalance))
	mux.HandleFunc("GET /api/me/transactions", middleware.RequireChildAuth(sessionHandler.ListTransactions))
	mux.HandleFunc("GET /api/me/achievements", middleware.RequireChildAuth(sessionHandler.ListAchievements))
	mux.HandleFunc("GET /api/me/rewards", middleware.RequireChildAuth(rewardHandler.ListRewards))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", middleware.RequireChildAuth(rewardHandler.RedeemReward))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background auto-close sweep
	go expireOverdueSessions(sessionService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// expireOverdueSessions periodically closes in-progress sessions whose
// auto-close deadline has passed
func expireOverdueSessions(sessionService *service.SessionService) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		closed, err := sessionService.ExpireOverdueSessions()
		if err != nil {
			log.Printf("Error expiring overdue sessions: %v", err)
			continue
		}
		if closed > 0 {
			log.Printf("Auto-closed %d overdue sessions", closed)
		}
	}
}
