package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/http/response"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/services"
)

const DefaultMaxUploadBytes = 32 << 20

type HistoryHandler struct {
	history  services.HistoryService
	maxBytes int64
}

func NewHistoryHandler(history services.HistoryService, maxUploadBytes int64) *HistoryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &HistoryHandler{history: history, maxBytes: maxUploadBytes}
}

// POST /api/clans/:id/history/upload
func (h *HistoryHandler) Upload(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+(1<<20))
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	if fh.Size > h.maxBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("file is %d bytes, limit is %d", fh.Size, h.maxBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer f.Close()
	buf, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	if int64(len(buf)) > h.maxBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("upload exceeds limit"))
		return
	}

	task, err := h.history.SubmitUpload(dbctx.Context{Ctx: c.Request.Context()}, clanID, buf)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"taskId": task.ID})
}

// GET /api/clans/:id/history/tasks/:taskId
func (h *HistoryHandler) GetTask(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
		return
	}
	task, err := h.history.GetTask(c.Request.Context(), clanID, taskID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, task)
}

// GET /api/clans/:id/history
func (h *HistoryHandler) List(c *gin.Context) {
	clanID, ok := clanIDParam(c)
	if !ok {
		return
	}
	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}
	limit, offset = services.NormalizePage(limit, offset)
	rows, total, err := h.history.ListHistory(dbctx.Context{Ctx: c.Request.Context()}, clanID, limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, response.Page[*types.FactionHistory]{Items: rows, Total: total, Limit: limit, Offset: offset})
}
