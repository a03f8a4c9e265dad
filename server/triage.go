package server

import (
	"net/http"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/internal/triage"
	"github.com/labstack/echo/v4"
)

type messageRequest struct {
	Message model.Message `json:"message"`
	Tone    string        `json:"tone,omitempty"`
	Project string        `json:"project,omitempty"`
}

type timingRequest struct {
	Priority model.Priority `json:"priority,omitempty"`
	Message  *model.Message `json:"message,omitempty"`
}

func bindMessage(c echo.Context) (messageRequest, error) {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return req, &taskstore.ValidationError{Field: "message", Reason: "invalid request"}
	}
	return req, nil
}

// bindDraftMessage is bindMessage for the drafting endpoints, which have
// nothing to work from when sender, subject and body are all empty.
func bindDraftMessage(c echo.Context) (messageRequest, error) {
	req, err := bindMessage(c)
	if err != nil {
		return req, err
	}
	m := req.Message
	if m.Sender == "" && m.Subject == "" && m.BodyPreview == "" {
		return req, &taskstore.ValidationError{Field: "message", Reason: "sender, subject and body_preview are all empty"}
	}
	return req, nil
}

func (s *Server) handleClassify(c echo.Context) error {
	req, err := bindMessage(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"priority": triage.Classify(req.Message),
		"score":    triage.Score(req.Message),
	})
}

func (s *Server) handleAdviseTiming(c echo.Context) error {
	var req timingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "priority", "invalid request")
	}

	var priority model.Priority
	var suggestions []triage.TimingSuggestion
	switch {
	case req.Message != nil:
		priority, suggestions = triage.AdviseTimingFor(*req.Message)
	case req.Priority != "":
		p, err := model.ParsePriority(string(req.Priority))
		if err != nil {
			return badRequest(c, "priority", err.Error())
		}
		priority, suggestions = p, triage.AdviseTiming(p)
	default:
		return badRequest(c, "priority", "give a priority or a message")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"priority":    priority,
		"suggestions": suggestions,
	})
}

func (s *Server) handleDraftReply(c echo.Context) error {
	req, err := bindDraftMessage(c)
	if err != nil {
		return writeError(c, err)
	}
	tone, perr := assist.ParseTone(req.Tone)
	if perr != nil {
		return badRequest(c, "tone", perr.Error())
	}

	drafts, origin := assist.DraftReplies(c.Request().Context(), s.gen, req.Message, tone)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"origin": origin,
		"tone":   tone,
		"drafts": drafts,
	})
}

func (s *Server) handleDraftTask(c echo.Context) error {
	req, err := bindDraftMessage(c)
	if err != nil {
		return writeError(c, err)
	}

	draft, origin := assist.DraftTask(c.Request().Context(), s.gen, req.Message)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"origin": origin,
		"task":   draft,
	})
}

func (s *Server) handleDraftSummary(c echo.Context) error {
	req, err := bindDraftMessage(c)
	if err != nil {
		return writeError(c, err)
	}

	summary, origin := assist.SummarizeMessage(c.Request().Context(), s.gen, req.Message)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"origin":  origin,
		"summary": summary,
	})
}
