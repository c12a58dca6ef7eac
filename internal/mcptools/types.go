package mcptools

// CalendarViewInput is the input schema for the calendar_view MCP tool.
type CalendarViewInput struct {
	View string `json:"view,omitempty" jsonschema-description:"month, week or day (default month)"`
	Date string `json:"date,omitempty" jsonschema-description:"ISO date inside the period (default today)"`
}

// CalendarViewOutput is the output schema for the calendar_view MCP tool.
type CalendarViewOutput struct {
	View    string          `json:"view"`
	Title   string          `json:"title"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Days    []DayResult     `json:"days"`
	Invalid []InvalidResult `json:"invalid,omitempty"`
}

// DayResult is one non-empty day in calendar_view output.
type DayResult struct {
	Date   string       `json:"date"`
	Total  int          `json:"total"`
	Hidden int          `json:"hidden"`
	Items  []ItemResult `json:"items"`
}

// InvalidResult is an item that could not be placed on the calendar.
type InvalidResult struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// DayItemsInput is the input schema for the day_items MCP tool.
type DayItemsInput struct {
	Date string `json:"date" jsonschema-description:"ISO date (YYYY-MM-DD)"`
}

// DayItemsOutput is the output schema for the day_items MCP tool.
type DayItemsOutput struct {
	Date  string       `json:"date"`
	Items []ItemResult `json:"items"`
}

// ItemResult is the common output format for item-related MCP tools.
type ItemResult struct {
	Kind      string   `json:"kind"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Time      string   `json:"time"`
	Href      string   `json:"href"`
	Platforms []string `json:"platforms,omitempty"`
	Mutable   bool     `json:"mutable"`
}

// RescheduleInput is the input schema for the reschedule_item MCP tool.
type RescheduleInput struct {
	Kind string `json:"kind" jsonschema-description:"social-post, outline or article"`
	ID   string `json:"id" jsonschema-description:"Item ID"`
	Date string `json:"date" jsonschema-description:"Target ISO date (YYYY-MM-DD)"`
}

// RescheduleOutput is the output schema for the reschedule_item MCP tool.
type RescheduleOutput struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	ScheduledAt string `json:"scheduled_at"`
}
