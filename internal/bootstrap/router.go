package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/symptom-finder/internal/api/http"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/service"
	symptomhttp "github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	SeedPath    string
	Lookup      *service.LookupService
	Metrics     *metrics.Collector
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Lookup)
	healthHandler.RegisterRoutes(r)

	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	api := r.Group("/api/v1")

	symptoms := api.Group("/symptoms")
	symptomhttp.New(dep.Lookup, dep.SeedPath).Register(symptoms)

	return r
}
