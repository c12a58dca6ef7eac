package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RescheduleHandler returns the handler function for the reschedule_item MCP tool.
func RescheduleHandler(src source.Source, settings Settings) func(ctx context.Context, req *mcp.CallToolRequest, input RescheduleInput) (*mcp.CallToolResult, RescheduleOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RescheduleInput) (*mcp.CallToolResult, RescheduleOutput, error) {
		loc := settings.location()
		kind, err := item.ParseKind(input.Kind)
		if err != nil {
			return nil, RescheduleOutput{}, err
		}
		target, err := calendar.ParseDayKey(input.Date)
		if err != nil {
			return nil, RescheduleOutput{}, err
		}
		ref := item.Ref{Kind: kind, ID: input.ID}

		intent, err := Reschedule(ctx, src, loc, ref, target)
		if err != nil {
			return nil, RescheduleOutput{}, err
		}
		return nil, RescheduleOutput{
			Kind:        string(ref.Kind),
			ID:          ref.ID,
			From:        string(intent.From),
			To:          string(intent.To),
			ScheduledAt: item.FormatTimestamp(intent.NewDate),
		}, nil
	}
}

// Reschedule runs a non-interactive drag: it fetches ref, picks it up, drops
// it on target and commits the move through src.
func Reschedule(ctx context.Context, src source.Source, loc *time.Location, ref item.Ref, target calendar.DayKey) (calendar.Reschedule, error) {
	it, err := source.Lookup(ctx, src, ref)
	if err != nil {
		return calendar.Reschedule{}, err
	}
	b := calendar.NewBoard(loc)
	defer b.Close()
	if err := b.Load([]item.Item{it}); err != nil {
		return calendar.Reschedule{}, err
	}

	started, err := b.StartDrag(ref)
	if err != nil {
		return calendar.Reschedule{}, fmt.Errorf("%s: %w", ref, err)
	}
	if !started {
		return calendar.Reschedule{}, fmt.Errorf("%w: %s is %s and can no longer be moved", source.ErrRejected, ref, it.Status)
	}
	intent, ok := b.Drop(target)
	if !ok {
		return calendar.Reschedule{}, fmt.Errorf("%s is already on %s", ref, target)
	}
	_, err = src.Reschedule(ctx, ref, intent.NewDate)
	if err := b.Resolve(intent, err); err != nil {
		return calendar.Reschedule{}, err
	}
	return intent, nil
}
