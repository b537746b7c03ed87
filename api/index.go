package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/labour-scheduler/pkg/auth"
	"github.com/arnavshah/labour-scheduler/pkg/config"
	"github.com/arnavshah/labour-scheduler/pkg/database"
	"github.com/arnavshah/labour-scheduler/pkg/handlers"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/arnavshah/labour-scheduler/pkg/logging"
	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var r *gin.Engine

// Serverless instances do not run the periodic scans; schedule them with the
// platform's cron hitting a long-running deployment instead.
func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger := logging.Init(cfg.LogLevel, "json")

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	store := repository.NewStore(db)
	_ = auth.EnsureUserExists(context.Background(), store.Users(), cfg.AdminUser, cfg.AdminPass, models.RoleFarmer)

	h := &handlers.Handler{
		Svc: labour.New(store,
			labour.WithLocation(cfg.Location),
			labour.WithLogger(logger),
		),
		Users:     store.Users(),
		JWTSecret: []byte(cfg.JWTSecret),
		APISecret: []byte(cfg.APISecret),
		Log:       logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(h, cfg.CORS)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
