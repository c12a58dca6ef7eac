package mcptools

import (
	"context"
	"time"

	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Settings carries the observer settings the tools render with.
type Settings struct {
	Location  *time.Location
	WeekStart time.Weekday
	MonthCap  int
	Now       func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// NewCalendarMCPServer creates an in-memory MCP server exposing calendar tools.
// Returns the server and a client transport for connecting to it.
func NewCalendarMCPServer(src source.Source, settings Settings) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(src, settings)

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with registered calendar tools.
func CreateMCPServer(src source.Source, settings Settings) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "contentcal",
		Version: "1.0.0",
	}, nil)

	// Read tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "calendar_view",
		Description: "Show scheduled content for the month, week or day containing a date",
	}, CalendarViewHandler(src, settings))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "day_items",
		Description: "List every item scheduled on one day",
	}, DayItemsHandler(src, settings))

	// Write tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reschedule_item",
		Description: "Move a pending post, draft article or outline to another day, keeping its time of day",
	}, RescheduleHandler(src, settings))

	return server
}
