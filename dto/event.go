package dto

import "webtraffic/model"

// TrackSessionRequest is the lifecycle event submitted by the tracking
// client. Field names mirror what the browser snippet sends.
type TrackSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required,sessionid"`
	Action    string `json:"action" binding:"required,oneof=start update end"`
	Timestamp int64  `json:"timestamp" binding:"required,gt=0"`
	PageURL   string `json:"pageUrl"`
	UserAgent string `json:"userAgent"`
}

func (r *TrackSessionRequest) ToEvent() model.TrackingEvent {
	return model.TrackingEvent{
		SessionID: r.SessionID,
		Action:    r.Action,
		Timestamp: r.Timestamp,
		PageURL:   r.PageURL,
		UserAgent: r.UserAgent,
	}
}
