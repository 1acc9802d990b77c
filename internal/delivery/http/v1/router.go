package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go-admissions-backend/config"
	"go-admissions-backend/internal/delivery/http/middleware"
	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/auth"
)

type RouterDeps struct {
	ProfileUC    domain.ProfileUsecase
	JobUC        domain.JobUsecase
	CatalogUC    domain.CatalogUsecase
	ContactUC    domain.ContactUsecase
	UserRepo     domain.UserRepository
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(deps.Config)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes
	NewJobHandler(v1, deps.JobUC)
	NewCatalogHandler(v1, deps.CatalogUC)
	NewContactHandler(v1, deps.ContactUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	writeLimit := middleware.RateLimitMiddleware(middleware.WriteRateLimitConfig(deps.Config))
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.UserRepo))
	{
		NewProfileHandler(protected, "student-profiles", domain.RoleStudent, deps.ProfileUC, writeLimit)
		NewProfileHandler(protected, "candidate-profiles", domain.RoleCandidate, deps.ProfileUC, writeLimit)
		NewProfileHandler(protected, "employer-profiles", domain.RoleEmployer, deps.ProfileUC, writeLimit)
	}

	return r
}
