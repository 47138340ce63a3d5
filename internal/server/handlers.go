package server

import (
	"fmt"
	"net/http"
	"time"

	"modeldash/internal/core"
	"modeldash/internal/metrics"

	"github.com/gin-gonic/gin"
)

// fineTuneIDQuery selects the fine-tune job to inspect instead of the model.
const fineTuneIDQuery = "ftid"

func (s *Server) indexPage(c *gin.Context) {
	view := s.gateway.LoadIndex(c.Request.Context())
	c.HTML(http.StatusOK, indexTemplate, view)
}

func (s *Server) modelPage(c *gin.Context) {
	modelID := c.Param("model_id")
	fineTuneID := c.Query(fineTuneIDQuery)

	info, failed := s.gateway.LookupDetail(c.Request.Context(), modelID, fineTuneID)
	c.HTML(http.StatusOK, modelInfoTemplate, modelPageData{
		ModelID:    modelID,
		FineTuneID: fineTuneID,
		Info:       info,
		Failed:     failed,
	})
}

func (s *Server) apiModels(c *gin.Context) {
	c.JSON(http.StatusOK, s.gateway.ListModels(c.Request.Context()))
}

func (s *Server) apiFineTunes(c *gin.Context) {
	c.JSON(http.StatusOK, s.gateway.ListFineTunes(c.Request.Context()))
}

// apiModelDetail answers 200 even when the payload is {"error": ...}.
func (s *Server) apiModelDetail(c *gin.Context) {
	info := s.gateway.ResolveDetail(c.Request.Context(), c.Param("model_id"), c.Query(fineTuneIDQuery))
	c.JSON(http.StatusOK, info)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) getStatsData(c *gin.Context) {
	stats := s.metricsService.GetRequestStats()
	periodStats := metrics.GetPeriodStats(stats.RequestHistory, core.StatsWindowDay, core.StatsWindowWeek, core.StatsWindowMonth)

	lastRequest := ""
	if !stats.LastRequestTime.IsZero() {
		lastRequest = stats.LastRequestTime.Format(core.TimeFormatDateTime)
	}

	c.JSON(http.StatusOK, gin.H{
		"currentTime":        time.Now().Format(core.TimeFormatDateTime),
		"currentQPS":         fmt.Sprintf("%.3f", s.metricsService.GetQPS()),
		"totalRequests":      stats.TotalRequests,
		"successfulRequests": stats.SuccessfulRequests,
		"failedRequests":     stats.FailedRequests,
		"lastRequestTime":    lastRequest,
		"totalRecords":       len(stats.RequestHistory),
		"stats24h":           periodStats[core.StatsWindowDay],
		"stats7d":            periodStats[core.StatsWindowWeek],
		"stats30d":           periodStats[core.StatsWindowMonth],
	})
}
