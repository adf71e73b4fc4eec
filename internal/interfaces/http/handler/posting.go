package handler

import (
	postingapp "github.com/corebank/backend/internal/application/posting"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PostingHandler handles commission schemes and batch inspection
type PostingHandler struct {
	BaseHandler
	posting *postingapp.Service
}

// NewPostingHandler creates a new PostingHandler
func NewPostingHandler(posting *postingapp.Service) *PostingHandler {
	return &PostingHandler{posting: posting}
}

// CreateScheme registers a commission scheme whose shares sum to 100
// POST /posting/schemes
func (h *PostingHandler) CreateScheme(c *gin.Context) {
	var req dto.CreateSchemeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scheme, err := h.posting.CreateScheme(c.Request.Context(), postingapp.SchemeRequest{
		Code:   req.Code,
		Name:   req.Name,
		Shares: req.Shares.ToShares(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToSchemeResponse(scheme))
}

// ListSchemes returns every scheme
// GET /posting/schemes
func (h *PostingHandler) ListSchemes(c *gin.Context) {
	schemes, err := h.posting.ListSchemes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSchemeResponses(schemes))
}

// GetScheme returns a scheme by code
// GET /posting/schemes/:code
func (h *PostingHandler) GetScheme(c *gin.Context) {
	scheme, err := h.posting.GetScheme(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSchemeResponse(scheme))
}

// UpdateShares replaces the shares of a scheme
// PUT /posting/schemes/:code/shares
func (h *PostingHandler) UpdateShares(c *gin.Context) {
	var req dto.UpdateSharesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	current, err := h.posting.GetScheme(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	scheme, err := h.posting.UpdateShares(c.Request.Context(), current.ID, req.Shares.ToShares())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSchemeResponse(scheme))
}

// PreviewSplit divides ?fee by the scheme
// GET /posting/schemes/:code/split
func (h *PostingHandler) PreviewSplit(c *gin.Context) {
	fee, err := decimal.NewFromString(c.Query("fee"))
	if err != nil || fee.IsNegative() {
		h.BadRequest(c, "fee must be a non-negative number")
		return
	}
	split, err := h.posting.PreviewSplit(c.Request.Context(), c.Param("code"), fee)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSplitResponse(split))
}

// InspectBatch expands a stored batch into its journal lines
// GET /posting/batches/:reference
func (h *PostingHandler) InspectBatch(c *gin.Context) {
	report, err := h.posting.Inspect(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToBatchReportResponse(report))
}
