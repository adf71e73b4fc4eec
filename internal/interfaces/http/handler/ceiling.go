package handler

import (
	ceilingapp "github.com/corebank/backend/internal/application/ceiling"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CeilingHandler handles cash ceiling request endpoints
type CeilingHandler struct {
	BaseHandler
	ceilings *ceilingapp.Service
}

// NewCeilingHandler creates a new CeilingHandler
func NewCeilingHandler(ceilings *ceilingapp.Service) *CeilingHandler {
	return &CeilingHandler{ceilings: ceilings}
}

// Create files a pending request for the caller's till
// POST /ceiling-requests
func (h *CeilingHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.CeilingCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.ceilings.Create(c.Request.Context(), ceilingapp.CreateRequest{
		BranchID:      caller.BranchID,
		UserID:        caller.UserID,
		Type:          ceiling.RequestType(req.Type),
		Amount:        req.Amount,
		Denominations: req.Denominations,
		Note:          req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToCeilingResponse(r))
}

// Approve moves the cash and posts the handover
// POST /ceiling-requests/:id/approve
func (h *CeilingHandler) Approve(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}
	result, err := h.ceilings.Approve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToApprovalResponse(result))
}

// Reject closes a pending request without moving cash
// POST /ceiling-requests/:id/reject
func (h *CeilingHandler) Reject(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}
	r, err := h.ceilings.Reject(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToCeilingResponse(r))
}

func (h *CeilingHandler) decision(c *gin.Context) (ceilingapp.DecisionRequest, bool) {
	caller, ok := h.caller(c)
	if !ok {
		return ceilingapp.DecisionRequest{}, false
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return ceilingapp.DecisionRequest{}, false
	}
	var body dto.CeilingDecisionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &body) {
		return ceilingapp.DecisionRequest{}, false
	}
	return ceilingapp.DecisionRequest{RequestID: id, UserID: caller.UserID, Reason: body.Reason}, true
}

// Get returns one request
// GET /ceiling-requests/:id
func (h *CeilingHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	r, err := h.ceilings.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToCeilingResponse(r))
}

// List pages through the requests of a branch, the caller's by default
// GET /ceiling-requests
func (h *CeilingHandler) List(c *gin.Context) {
	var q dto.CeilingListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var branchID uuid.UUID
	if q.BranchID != "" {
		branchID = uuid.MustParse(q.BranchID)
	} else {
		caller, ok := h.caller(c)
		if !ok {
			return
		}
		branchID = caller.BranchID
	}
	filter := filterFrom(q.PageRequest)

	requests, total, err := h.ceilings.List(c.Request.Context(), branchID, ceiling.Status(q.Status), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, dto.ToCeilingResponses(requests), total, filter)
}
