// Package server wires the HTTP surface: prediction, tracking, auth, and
// the content listings.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vaishrk/pcos-care/internal/auth"
	"github.com/vaishrk/pcos-care/internal/inference"
	"github.com/vaishrk/pcos-care/internal/model"
)

// Store is the persistence surface the handlers need.
type Store interface {
	LatestPredictionByUser(ctx context.Context, userID int64) (*model.PredictionRecord, error)
	ListDietRecommendations(ctx context.Context) ([]model.DietRecommendation, error)
	ListWellnessTips(ctx context.Context) ([]model.WellnessTip, error)
	ListHealthRecords(ctx context.Context) ([]model.HealthRecord, error)
	SaveHealthRecord(ctx context.Context, record *model.HealthRecord) error
}

// Predictor answers inference requests from the loaded model bundle.
type Predictor interface {
	Predict(ctx context.Context, userID int64, raw map[string]string) (*inference.Prediction, error)
	DetectSymptoms(raw map[string]string) (string, error)
}

// Authenticator handles registration and login.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*model.UserAccount, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// Server holds the request handlers' collaborators. All of them are
// constructed once at startup and read-only afterwards.
type Server struct {
	store     Store
	predictor Predictor
	auth      Authenticator
}

// New creates a server around its collaborators.
func New(store Store, predictor Predictor, authenticator Authenticator) *Server {
	return &Server{
		store:     store,
		predictor: predictor,
		auth:      authenticator,
	}
}

// Router builds the gin engine with CORS restricted to the allowed
// origins.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/predict", s.handlePredict)
	r.GET("/tracking/:user_id", s.handleTracking)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
	}

	api := r.Group("/api")
	{
		api.GET("/diet", s.handleDietList)
		api.GET("/wellness", s.handleWellnessList)
		api.GET("/tracking", s.handleHealthRecordList)
		api.POST("/tracking", s.handleHealthRecordSave)
		api.POST("/detect", s.handleDetect)
	}

	return r
}
