package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/http/response"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/services"
)

type AuditHandler struct {
	audit services.AuditService
}

func NewAuditHandler(audit services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// GET /api/clans/:id/audit?limit&offset&action
func (h *AuditHandler) List(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}
	limit, offset = services.NormalizePage(limit, offset)
	rows, total, err := h.audit.List(dbctx.Context{Ctx: c.Request.Context()}, clanID, repos.AuditFilter{
		Action: c.Query("action"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Page[*types.AuditLog]{Items: rows, Total: total, Limit: limit, Offset: offset})
}
