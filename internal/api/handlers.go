package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/gin-gonic/gin"
)

type rescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
	// Date moves the item to another day at its current time of day.
	Date string `json:"date"`
}

type rescheduleResponse struct {
	Item  item.Item       `json:"item"`
	Moved bool            `json:"moved"`
	From  calendar.DayKey `json:"from,omitempty"`
	To    calendar.DayKey `json:"to,omitempty"`
}

type dayItem struct {
	calendar.Descriptor
	Item item.Item `json:"item"`
}

// statusFor maps a source or calendar error to an HTTP status. It is the
// inverse of the rest source's status mapping.
func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrNotFound), errors.Is(err, calendar.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, source.ErrRejected), errors.Is(err, calendar.ErrDragInProgress):
		return http.StatusConflict
	case errors.Is(err, source.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrLoad):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	s.mu.Lock()
	state := s.board.State()
	count := len(s.board.Items())
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"state":     state.String(),
		"items":     count,
		"timestamp": s.opts.Now().In(s.opts.Location).Format(time.RFC3339),
	})
}

func (s *Server) parseDay(raw string) (calendar.DayKey, time.Time, error) {
	key, err := calendar.ParseDayKey(raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", source.ErrValidation, err)
	}
	day, err := key.Date(s.opts.Location)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", source.ErrValidation, err)
	}
	return key, day, nil
}

func (s *Server) listItems(c *gin.Context) {
	var opts source.ListOptions

	if raw := c.Query("kinds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			k, err := item.ParseKind(part)
			if err != nil {
				abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
				return
			}
			opts.Kinds = append(opts.Kinds, k)
		}
	}
	for name, dst := range map[string]**time.Time{"start": &opts.Start, "end": &opts.End} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		_, day, err := s.parseDay(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		*dst = &day
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, fmt.Errorf("%w: invalid limit %q", source.ErrValidation, raw))
			return
		}
		opts.Limit = n
	}

	items, err := s.src.List(c.Request.Context(), opts)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) getItem(c *gin.Context) {
	kind, err := item.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
		return
	}
	it, err := source.Lookup(c.Request.Context(), s.src, item.Ref{Kind: kind, ID: c.Param("id")})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": it})
}

func (s *Server) reschedule(c *gin.Context) {
	kind, err := item.ParseKind(c.Param("kind"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
		return
	}
	ref := item.Ref{Kind: kind, ID: c.Param("id")}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
		return
	}

	ctx := c.Request.Context()
	switch {
	case req.Date != "":
		key, _, err := s.parseDay(req.Date)
		if err != nil {
			abortWithError(c, err)
			return
		}
		resp, err := s.moveToDay(ctx, ref, key)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	case req.ScheduledAt != "":
		at, err := item.ParseTimestamp(req.ScheduledAt, s.opts.Location)
		if err != nil {
			abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
			return
		}
		updated, err := s.src.Reschedule(ctx, ref, at)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if err := s.Reload(ctx); err != nil {
			slog.Warn("reload after reschedule failed", "item", ref.String(), "error", err)
		}
		c.JSON(http.StatusOK, rescheduleResponse{Item: updated, Moved: true})

	default:
		abortWithError(c, fmt.Errorf("%w: scheduled_at or date is required", source.ErrValidation))
	}
}

// moveToDay drags ref onto key on the shared board, commits the move and
// settles the board with the outcome.
func (s *Server) moveToDay(ctx context.Context, ref item.Ref, key calendar.DayKey) (rescheduleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	started, err := s.board.StartDrag(ref)
	if errors.Is(err, calendar.ErrUnknownItem) {
		return rescheduleResponse{}, fmt.Errorf("%w: %s", source.ErrNotFound, ref)
	}
	if err != nil {
		return rescheduleResponse{}, err
	}
	if !started {
		it, _ := s.board.Index().Find(ref)
		return rescheduleResponse{}, source.CheckMutable(it)
	}

	intent, ok := s.board.Drop(key)
	if !ok {
		it, _ := s.board.Index().Find(ref)
		return rescheduleResponse{Item: it, From: key, To: key}, nil
	}

	updated, err := s.src.Reschedule(ctx, ref, intent.NewDate)
	if err := s.board.Resolve(intent, err); err != nil {
		slog.Info("reschedule rolled back", "item", ref.String(), "from", intent.From, "to", intent.To, "error", err)
		return rescheduleResponse{}, err
	}
	return rescheduleResponse{Item: updated, Moved: true, From: intent.From, To: intent.To}, nil
}

func (s *Server) calendar(c *gin.Context) {
	g, err := calendar.ParseGranularity(c.Query("view"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", source.ErrValidation, err))
		return
	}
	now := s.opts.Now()
	ref := now.In(s.opts.Location)
	if raw := c.Query("date"); raw != "" {
		if _, ref, err = s.parseDay(raw); err != nil {
			abortWithError(c, err)
			return
		}
	}

	s.mu.Lock()
	s.ensureLoadedLocked(c.Request.Context())
	if s.board.State() == calendar.LoadFailed {
		err := s.board.LoadErr()
		s.mu.Unlock()
		abortWithError(c, err)
		return
	}
	v := s.board.Render(ref, g, calendar.RenderOptions{
		Today:     calendar.KeyOf(now, s.opts.Location),
		WeekStart: s.opts.WeekStart,
		MonthCap:  s.opts.MonthCap,
	})
	s.mu.Unlock()

	c.JSON(http.StatusOK, v)
}

func (s *Server) day(c *gin.Context) {
	key, _, err := s.parseDay(c.Param("key"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	s.mu.Lock()
	s.ensureLoadedLocked(c.Request.Context())
	if s.board.State() == calendar.LoadFailed {
		err := s.board.LoadErr()
		s.mu.Unlock()
		abortWithError(c, err)
		return
	}
	items := s.board.Index().Day(key)
	s.mu.Unlock()

	out := make([]dayItem, 0, len(items))
	for _, it := range items {
		out = append(out, dayItem{Descriptor: calendar.Present(it), Item: it})
	}
	c.JSON(http.StatusOK, gin.H{"day": key, "items": out})
}
