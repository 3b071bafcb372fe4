package model

// TokenDistribution splits a token total across the four counters.
type TokenDistribution struct {
	Input         uint64 `json:"input"`
	Output        uint64 `json:"output"`
	CacheCreation uint64 `json:"cache_creation"`
	CacheRead     uint64 `json:"cache_read"`
}

// Total sums the four counters.
func (d TokenDistribution) Total() uint64 {
	return d.Input + d.Output + d.CacheCreation + d.CacheRead
}

// Add accumulates another distribution into d.
func (d *TokenDistribution) Add(o TokenDistribution) {
	d.Input += o.Input
	d.Output += o.Output
	d.CacheCreation += o.CacheCreation
	d.CacheRead += o.CacheRead
}

// AddUsage accumulates one message's usage, treating absent fields as zero.
func (d *TokenDistribution) AddUsage(u *TokenUsage) {
	if u == nil {
		return
	}
	d.Input += deref(u.InputTokens)
	d.Output += deref(u.OutputTokens)
	d.CacheCreation += deref(u.CacheCreationInputTokens)
	d.CacheRead += deref(u.CacheReadInputTokens)
}

// DailyStats is one calendar-day bucket (date formatted as 2006-01-02).
type DailyStats struct {
	Date         string `json:"date"`
	TotalTokens  uint64 `json:"total_tokens"`
	InputTokens  uint64 `json:"input_tokens"`
	OutputTokens uint64 `json:"output_tokens"`
	MessageCount uint32 `json:"message_count"`
	SessionCount int    `json:"session_count"`
	ActiveHours  uint32 `json:"active_hours"`
}

// ActivityHeatmapCell is one hour-of-day x day-of-week bucket.
// Day follows time.Weekday numbering (Sunday = 0).
type ActivityHeatmapCell struct {
	Hour          uint8  `json:"hour"`
	Day           uint8  `json:"day"`
	ActivityCount uint32 `json:"activity_count"`
	TokensUsed    uint64 `json:"tokens_used"`
}

// ToolUsageStat summarizes invocations of one tool.
type ToolUsageStat struct {
	ToolName    string  `json:"tool_name"`
	UsageCount  uint32  `json:"usage_count"`
	SuccessRate float32 `json:"success_rate"`
}

// ModelStats summarizes usage attributed to one model.
type ModelStats struct {
	ModelName           string `json:"model_name"`
	MessageCount        uint32 `json:"message_count"`
	TokenCount          uint64 `json:"token_count"`
	InputTokens         uint64 `json:"input_tokens"`
	OutputTokens        uint64 `json:"output_tokens"`
	CacheCreationTokens uint64 `json:"cache_creation_tokens"`
	CacheReadTokens     uint64 `json:"cache_read_tokens"`
}

// ProviderUsageStats summarizes one provider's share of the global view.
type ProviderUsageStats struct {
	ProviderID string `json:"provider_id"`
	Projects   uint32 `json:"projects"`
	Sessions   uint32 `json:"sessions"`
	Messages   uint64 `json:"messages"`
	Tokens     uint64 `json:"tokens"`
}

// ProjectRanking is one row of the top-projects list.
type ProjectRanking struct {
	ProjectName string `json:"project_name"`
	Sessions    uint32 `json:"sessions"`
	Messages    uint64 `json:"messages"`
	Tokens      uint64 `json:"tokens"`
}

// DateRange bounds the observed message timestamps.
type DateRange struct {
	FirstMessage string `json:"first_message,omitempty"`
	LastMessage  string `json:"last_message,omitempty"`
	DaysSpan     uint32 `json:"days_span"`
}

// ProjectStatsSummary is the aggregate view over one project's sessions.
type ProjectStatsSummary struct {
	ProjectName          string                `json:"project_name"`
	TotalSessions        int                   `json:"total_sessions"`
	TotalMessages        uint64                `json:"total_messages"`
	TotalTokens          uint64                `json:"total_tokens"`
	TokenDistribution    TokenDistribution     `json:"token_distribution"`
	AvgTokensPerSession  uint64                `json:"avg_tokens_per_session"`
	TotalSessionDuration uint32                `json:"total_session_duration"`
	AvgSessionDuration   uint32                `json:"avg_session_duration"`
	MostActiveHour       uint8                 `json:"most_active_hour"`
	MostUsedTools        []ToolUsageStat       `json:"most_used_tools"`
	DailyStats           []DailyStats          `json:"daily_stats"`
	ActivityHeatmap      []ActivityHeatmapCell `json:"activity_heatmap"`
}

// GlobalStatsSummary is the aggregate view across every included provider.
type GlobalStatsSummary struct {
	TotalProjects               uint32                `json:"total_projects"`
	TotalSessions               uint32                `json:"total_sessions"`
	TotalMessages               uint64                `json:"total_messages"`
	TotalTokens                 uint64                `json:"total_tokens"`
	TotalSessionDurationMinutes uint32                `json:"total_session_duration_minutes"`
	TokenDistribution           TokenDistribution     `json:"token_distribution"`
	MostUsedTools               []ToolUsageStat       `json:"most_used_tools"`
	ProviderDistribution        []ProviderUsageStats  `json:"provider_distribution"`
	ModelDistribution           []ModelStats          `json:"model_distribution"`
	TopProjects                 []ProjectRanking      `json:"top_projects"`
	DailyStats                  []DailyStats          `json:"daily_stats"`
	ActivityHeatmap             []ActivityHeatmapCell `json:"activity_heatmap"`
	DateRange                   DateRange             `json:"date_range"`
}

// SessionTokenStats is the per-session row of the token ranking view.
type SessionTokenStats struct {
	SessionID       string            `json:"session_id"`
	FilePath        string            `json:"file_path,omitempty"`
	TotalTokens     uint64            `json:"total_tokens"`
	Distribution    TokenDistribution `json:"distribution"`
	MessageCount    int               `json:"message_count"`
	FirstMessageAt  string            `json:"first_message_at,omitempty"`
	LastMessageAt   string            `json:"last_message_at,omitempty"`
	DurationMinutes uint32            `json:"duration_minutes"`
}

// PaginatedTokenStats is one page of the token ranking view, sorted by
// total tokens descending.
type PaginatedTokenStats struct {
	Items      []SessionTokenStats `json:"items"`
	TotalCount int                 `json:"total_count"`
	Offset     int                 `json:"offset"`
	Limit      int                 `json:"limit"`
	HasMore    bool                `json:"has_more"`
}

// SessionComparison ranks one session against its project siblings.
type SessionComparison struct {
	SessionID            string  `json:"session_id"`
	PercentOfTokens      float32 `json:"percentage_of_project_tokens"`
	PercentOfMessages    float32 `json:"percentage_of_project_messages"`
	RankByTokens         int     `json:"rank_by_tokens"`
	RankByDuration       int     `json:"rank_by_duration"`
	IsAboveAverage       bool    `json:"is_above_average"`
	ProjectSessionsTotal int     `json:"project_sessions_total"`
}
