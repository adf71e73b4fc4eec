package handler

import (
	tellerapp "github.com/corebank/backend/internal/application/teller"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TellerHandler handles till and assignment endpoints
type TellerHandler struct {
	BaseHandler
	tellers *tellerapp.Service
}

// NewTellerHandler creates a new TellerHandler
func NewTellerHandler(tellers *tellerapp.Service) *TellerHandler {
	return &TellerHandler{tellers: tellers}
}

// Create registers a till with an empty custodian account
// POST /tellers
func (h *TellerHandler) Create(c *gin.Context) {
	var req dto.CreateTellerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.tellers.CreateTeller(c.Request.Context(), tellerapp.CreateTellerRequest{
		BranchID:  uuid.MustParse(req.BranchID),
		Code:      req.Code,
		Name:      req.Name,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToTellerResponse(t))
}

// List returns the tills of a branch, the caller's by default
// GET /tellers
func (h *TellerHandler) List(c *gin.Context) {
	branchID, ok := h.branchQuery(c)
	if !ok {
		return
	}
	tellers, err := h.tellers.ListTellers(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTellerResponses(tellers))
}

// Assign puts a user on a till of the caller's branch
// POST /tellers/assignments
func (h *TellerHandler) Assign(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.AssignTellerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	userID := uuid.MustParse(req.UserID)
	userBranch := caller.BranchID
	switch {
	case req.UserBranchID != "":
		userBranch = uuid.MustParse(req.UserBranchID)
	case userID != caller.UserID:
		// the branch check on sub-tellers needs the assignee's home branch
		h.BadRequest(c, "user_branch_id is required when assigning another user")
		return
	}

	a, err := h.tellers.Assign(c.Request.Context(), teller.AssignRequest{
		UserID:       userID,
		UserBranchID: userBranch,
		BranchID:     caller.BranchID,
		TellerID:     uuid.MustParse(req.TellerID),
		IsPrimary:    req.IsPrimary,
		AssignedBy:   caller.UserID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToAssignmentResponse(a))
}

// Unassign ends an assignment
// DELETE /tellers/assignments/:id
func (h *TellerHandler) Unassign(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.tellers.Unassign(c.Request.Context(), id, caller.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Mine returns the caller's active assignment in their branch
// GET /tellers/assignments/me
func (h *TellerHandler) Mine(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	a, err := h.tellers.GetActiveForUser(c.Request.Context(), caller.UserID, caller.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAssignmentResponse(a))
}

// Primary returns the active primary assignment of a branch
// GET /tellers/assignments/primary
func (h *TellerHandler) Primary(c *gin.Context) {
	branchID, ok := h.branchQuery(c)
	if !ok {
		return
	}
	a, err := h.tellers.GetPrimaryForBranch(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAssignmentResponse(a))
}
