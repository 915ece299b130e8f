package handler

import (
	"context"
	"log"
	"net/http"

	"webtraffic/dto"
	"webtraffic/middleware"
	"webtraffic/model"
	"webtraffic/usecase"
	"webtraffic/utils"

	"github.com/gin-gonic/gin"
)

// ReportCache is the slice of the report cache this handler needs;
// *services.ReportCache satisfies it.
type ReportCache interface {
	GetReport(ctx context.Context, window string) (*model.AnalyticsReport, error)
	SetReport(ctx context.Context, window string, report *model.AnalyticsReport) error
	GetLastKnownGood(ctx context.Context, window string) (*model.AnalyticsReport, error)
}

type AnalyticsHandler struct {
	Analytics *usecase.AnalyticsService
	Cache     ReportCache // nil when Redis is not configured
}

func NewAnalyticsHandler(analytics *usecase.AnalyticsService, cache ReportCache) *AnalyticsHandler {
	return &AnalyticsHandler{
		Analytics: analytics,
		Cache:     cache,
	}
}

// GetAnalytics serves the aggregated traffic report. The window comes
// from the query string on GET or the JSON body on POST and defaults to
// seven days. When the store scan fails, the last-known-good cached
// report is served instead so the dashboard degrades to stale data rather
// than an error page.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	var query dto.AnalyticsQuery
	var err error
	switch {
	case c.Request.Method == http.MethodPost && c.Request.ContentLength > 0:
		err = c.ShouldBindJSON(&query)
	case c.Request.Method != http.MethodPost:
		err = c.ShouldBindQuery(&query)
	}
	if err != nil {
		middleware.TrackError("validation")
		utils.BadRequest(c, "Invalid analytics query: window must be one of 1d, 7d, 30d")
		return
	}

	window := query.WindowOrDefault()
	ctx := c.Request.Context()

	if h.Cache != nil {
		cached, err := h.Cache.GetReport(ctx, window)
		if err != nil {
			middleware.TrackError("cache")
			log.Printf("Warning: report cache read failed: %v", err)
		}
		if cached != nil {
			utils.Success(c, cached)
			return
		}
	}

	report, err := h.Analytics.Aggregate(ctx, window)
	if err != nil {
		log.Printf("Error aggregating analytics for window %s: %v", window, err)
		if stale := h.lastKnownGood(c, window); stale != nil {
			c.Header("X-Report-Stale", "true")
			middleware.TrackAnalyticsQuery(window, "stale")
			utils.Success(c, stale)
			return
		}
		utils.ServiceUnavailable(c, "Analytics data unavailable")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.SetReport(ctx, window, report); err != nil {
			middleware.TrackError("cache")
			log.Printf("Warning: failed to cache report: %v", err)
		}
	}

	utils.Success(c, report)
}

func (h *AnalyticsHandler) lastKnownGood(c *gin.Context, window string) *model.AnalyticsReport {
	if h.Cache == nil {
		return nil
	}
	report, err := h.Cache.GetLastKnownGood(c.Request.Context(), window)
	if err != nil {
		middleware.TrackError("cache")
		log.Printf("Warning: last-known-good read failed: %v", err)
		return nil
	}
	return report
}
