package handler

import (
	"errors"

	"webtraffic/dto"
	"webtraffic/middleware"
	"webtraffic/repository"
	"webtraffic/usecase"
	"webtraffic/utils"

	"github.com/gin-gonic/gin"
)

// TrackSessionHandler ingests one lifecycle event from the browser
// client. The client fires and forgets; errors here are for its logs, not
// for retry logic.
func TrackSessionHandler(c *gin.Context, tracker *usecase.SessionTracker) {
	var req dto.TrackSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.TrackError("validation")
		utils.BadRequest(c, "Invalid tracking event")
		return
	}

	if err := tracker.Apply(c.Request.Context(), req.ToEvent()); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEvent):
			middleware.TrackError("validation")
			utils.BadRequest(c, "Invalid tracking event")
		case errors.Is(err, repository.ErrDuplicateSession):
			// A replayed "start"; the existing record wins.
			utils.Conflict(c, "Session already started")
		case errors.Is(err, repository.ErrStorageUnavailable):
			utils.ServiceUnavailable(c, "Failed to record session event")
		default:
			utils.InternalError(c, "Failed to record session event")
		}
		return
	}

	utils.Success(c, gin.H{"success": true})
}
