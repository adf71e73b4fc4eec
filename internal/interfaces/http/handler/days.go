package handler

import (
	"context"

	"github.com/corebank/backend/internal/application/accountingday"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DayHandler handles accounting day endpoints
type DayHandler struct {
	BaseHandler
	days *accountingday.Service
}

// NewDayHandler creates a new DayHandler
func NewDayHandler(days *accountingday.Service) *DayHandler {
	return &DayHandler{days: days}
}

// DayListQuery filters the day listing
type DayListQuery struct {
	dto.PageRequest
	BranchID string `form:"branch_id" binding:"omitempty,uuid"`
}

// Open opens a date for the listed branches or for every branch
// POST /days/open
func (h *DayHandler) Open(c *gin.Context) {
	h.transition(c, h.days.Open)
}

// Close closes a date for the listed branches or for every branch
// POST /days/close
func (h *DayHandler) Close(c *gin.Context) {
	h.transition(c, h.days.Close)
}

type transitionFunc func(context.Context, accountingday.TransitionRequest) (*accountingday.DayBatchResult, error)

func (h *DayHandler) transition(c *gin.Context, run transitionFunc) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.DayTransitionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, ok := h.parseDate(c, req.Date)
	if !ok {
		return
	}

	result, err := run(c.Request.Context(), accountingday.TransitionRequest{
		Date:        date,
		BranchIDs:   parseUUIDs(req.BranchIDs),
		Centralized: req.Centralized,
		UserID:      caller.UserID,
		Note:        req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.outcome(c, result)
}

// Reopen reopens one closed day
// POST /days/reopen
func (h *DayHandler) Reopen(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.DayReopenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, ok := h.parseDate(c, req.Date)
	if !ok {
		return
	}
	var branchID *uuid.UUID
	if req.BranchID != nil {
		id := uuid.MustParse(*req.BranchID)
		branchID = &id
	}

	result, err := h.days.Reopen(c.Request.Context(), accountingday.ReopenRequest{
		Date:     date,
		BranchID: branchID,
		UserID:   caller.UserID,
		Note:     req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.outcome(c, result)
}

// outcome answers 200 when every branch succeeded and otherwise the
// status of the first failure, with the breakdown in both cases
func (h *DayHandler) outcome(c *gin.Context, result *accountingday.DayBatchResult) {
	body := dto.ToDayBatchResponse(result)
	if result.Success {
		h.Success(c, body)
		return
	}
	c.JSON(dto.StatusForKind(result.Status), dto.Response{
		Success:   false,
		Data:      body,
		Error:     &dto.ErrorInfo{Code: string(result.Status), Message: result.Message},
		RequestID: middleware.GetRequestID(c),
	})
}

// Current returns the open day of a branch, the caller's by default
// GET /days/current
func (h *DayHandler) Current(c *gin.Context) {
	branchID, ok := h.branchQuery(c)
	if !ok {
		return
	}
	day, err := h.days.GetCurrent(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToDayResponse(day))
}

// List pages through accounting days, optionally of one branch
// GET /days
func (h *DayHandler) List(c *gin.Context) {
	var q DayListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var branchID *uuid.UUID
	if q.BranchID != "" {
		id := uuid.MustParse(q.BranchID)
		branchID = &id
	}
	filter := filterFrom(q.PageRequest)

	days, total, err := h.days.List(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, dto.ToDayResponses(days), total, filter)
}

// Delete removes a day that never carried activity
// DELETE /days/:id
func (h *DayHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.days.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
