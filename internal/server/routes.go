package server

import (
	"modeldash/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() error {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.corsMiddleware())
	s.router.Use(metrics.GinMiddleware())

	// Dashboard pages
	s.router.GET("/", s.indexPage)
	s.router.GET("/model/:model_id", s.modelPage)

	// JSON mirrors
	api := s.router.Group("/api")
	{
		api.GET("/models", s.apiModels)
		api.GET("/fine_tunes", s.apiFineTunes)
		api.GET("/model/:model_id", s.apiModelDetail)
		api.GET("/stats", s.getStatsData)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}
