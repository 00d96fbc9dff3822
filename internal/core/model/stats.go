package model

// DailyStats aggregates one calendar day (YYYY-MM-DD) of break activity.
type DailyStats struct {
	Date              string `json:"date"`
	TotalUsageSeconds int    `json:"total_usage_seconds"`

	MicroPrompts       int `json:"micro_prompts"`
	MicroPromptedTaken int `json:"micro_prompted_taken"`
	MicroPostponed     int `json:"micro_postponed"`

	RestPrompts       int `json:"rest_prompts"`
	RestPromptedTaken int `json:"rest_prompted_taken"`
	RestPostponed     int `json:"rest_postponed"`
}

// ComplianceRate is the share of prompted breaks that were taken, in percent.
func (stats DailyStats) ComplianceRate() float64 {
	taken := stats.MicroPromptedTaken + stats.RestPromptedTaken
	total := taken + stats.MicroPostponed + stats.RestPostponed
	if total == 0 {
		return 0
	}
	return float64(taken) / float64(total) * 100
}

// UsageHours presents the usage in hours.
func (stats DailyStats) UsageHours() float64 {
	return float64(stats.TotalUsageSeconds) / 3600
}
