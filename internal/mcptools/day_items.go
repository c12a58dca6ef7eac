package mcptools

import (
	"context"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DayItemsHandler returns the handler function for the day_items MCP tool.
func DayItemsHandler(src source.Source, settings Settings) func(ctx context.Context, req *mcp.CallToolRequest, input DayItemsInput) (*mcp.CallToolResult, DayItemsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DayItemsInput) (*mcp.CallToolResult, DayItemsOutput, error) {
		loc := settings.location()
		day, err := parseDate(input.Date, loc)
		if err != nil {
			return nil, DayItemsOutput{}, err
		}
		b, err := loadBoard(ctx, src, loc, day, day)
		if err != nil {
			return nil, DayItemsOutput{}, err
		}

		key := calendar.KeyOf(day, loc)
		out := DayItemsOutput{Date: string(key), Items: []ItemResult{}}
		items, _ := b.SelectDay(key)
		for _, it := range items {
			out.Items = append(out.Items, itemResult(it, b.Index()))
		}
		return nil, out, nil
	}
}
