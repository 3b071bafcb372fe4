package model

// Session describes one conversation as stored by a provider. SessionID is
// the storage identity (a file path for file-backed providers, a virtual id
// otherwise); ActualSessionID is the conversation id recorded inside the log,
// which several files may share.
type Session struct {
	SessionID       string     `json:"session_id"`
	ActualSessionID string     `json:"actual_session_id,omitempty"`
	FilePath        string     `json:"file_path,omitempty"`
	ProjectName     string     `json:"project_name"`
	MessageCount    int        `json:"message_count"`
	FirstMessageAt  string     `json:"first_message_at,omitempty"`
	LastMessageAt   string     `json:"last_message_at,omitempty"`
	HasToolUse      bool       `json:"has_tool_use"`
	HasErrors       bool       `json:"has_errors"`
	Summary         string     `json:"summary,omitempty"`
	Provider        ProviderID `json:"provider,omitempty"`
}

// Project groups sessions under one provider-specific grouping key.
type Project struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	SessionCount int        `json:"session_count"`
	MessageCount int        `json:"message_count"`
	LastActivity string     `json:"last_activity,omitempty"`
	Provider     ProviderID `json:"provider,omitempty"`
}

// ProviderInfo describes a detected provider installation.
type ProviderInfo struct {
	ID          ProviderID `json:"id"`
	DisplayName string     `json:"display_name"`
	BasePath    string     `json:"base_path"`
	IsAvailable bool       `json:"is_available"`
}

// PaginatedMessages is one page of a session's messages in chat order:
// offset 0 is the page ending at the newest message, and messages within a
// page run oldest to newest.
type PaginatedMessages struct {
	Items      []Message `json:"items"`
	TotalCount int       `json:"total_count"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
	HasMore    bool      `json:"has_more"`
}
