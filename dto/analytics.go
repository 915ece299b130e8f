package dto

// AnalyticsQuery selects the lookback window for an aggregation request.
// The window defaults to "7d" when omitted.
type AnalyticsQuery struct {
	Window string `json:"window" form:"window" binding:"omitempty,oneof=1d 7d 30d"`
}

func (q *AnalyticsQuery) WindowOrDefault() string {
	if q.Window == "" {
		return "7d"
	}
	return q.Window
}
