package mcptools

import (
	"context"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CalendarViewHandler returns the handler function for the calendar_view MCP tool.
func CalendarViewHandler(src source.Source, settings Settings) func(ctx context.Context, req *mcp.CallToolRequest, input CalendarViewInput) (*mcp.CallToolResult, CalendarViewOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CalendarViewInput) (*mcp.CallToolResult, CalendarViewOutput, error) {
		loc := settings.location()
		g, err := calendar.ParseGranularity(input.View)
		if err != nil {
			return nil, CalendarViewOutput{}, err
		}
		ref := settings.now().In(loc)
		if input.Date != "" {
			if ref, err = parseDate(input.Date, loc); err != nil {
				return nil, CalendarViewOutput{}, err
			}
		}

		start, end := calendar.Range(ref, g, loc, settings.WeekStart)
		b, err := loadBoard(ctx, src, loc, start, end)
		if err != nil {
			return nil, CalendarViewOutput{}, err
		}

		v := b.Render(ref, g, calendar.RenderOptions{
			Today:     calendar.KeyOf(settings.now(), loc),
			WeekStart: settings.WeekStart,
			MonthCap:  settings.MonthCap,
		})

		ix := b.Index()
		out := CalendarViewOutput{
			View:  v.View,
			Title: v.Title,
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
			Days:  []DayResult{},
		}
		for _, c := range v.Cells {
			if c.Padding() || c.Total == 0 {
				continue
			}
			day := DayResult{Date: string(c.Key), Total: c.Total, Hidden: c.Hidden}
			for _, it := range ix.Day(c.Key)[:len(c.Shown)] {
				day.Items = append(day.Items, itemResult(it, ix))
			}
			out.Days = append(out.Days, day)
		}
		for _, inv := range v.Invalid {
			out.Invalid = append(out.Invalid, InvalidResult{
				Kind:   string(inv.Ref.Kind),
				ID:     inv.Ref.ID,
				Title:  inv.Label,
				Reason: inv.Reason,
			})
		}
		return nil, out, nil
	}
}
