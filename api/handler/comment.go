package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/relichub/backend/api/transport"
	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/pkg/httpcontext"
	commentsUC "github.com/relichub/backend/usecase/comments"
)

type CommentHandler struct {
	baseHandler
	uc *commentsUC.UseCase
}

func NewCommentHandler(uc *commentsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List own comments
// @Tags comments
// @Router /api/v1/comments [get]
func (h *CommentHandler) ListOwn(ctx *fasthttp.RequestCtx) {
	authorID := h.userID(ctx)
	if authorID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.ListByAuthor(stdCtx, authorID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, comments)
}

// @Summary List a relic's approved comments
// @Tags comments
// @Router /api/v1/relics/{relic_id}/comments [get]
func (h *CommentHandler) ListForRelic(ctx *fasthttp.RequestCtx) {
	relicID, _ := ctx.UserValue("relic_id").(string)
	if relicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing relic id", nil))
		return
	}

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 20)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.ApprovedForRelic(stdCtx, relicID, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, comments)
}

// @Summary Post a comment
// @Tags comments
// @Router /api/v1/comments [post]
func (h *CommentHandler) Post(ctx *fasthttp.RequestCtx) {
	authorID := h.userID(ctx)
	if authorID == "" {
		return
	}

	var req transport.CommentPostRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.RelicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comment, err := h.uc.Post(stdCtx, authorID, req.RelicID, req.Content)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, comment)
}

// @Summary Edit a comment
// @Tags comments
// @Router /api/v1/comments/{id} [put]
func (h *CommentHandler) Edit(ctx *fasthttp.RequestCtx) {
	authorID := h.userID(ctx)
	if authorID == "" {
		return
	}

	commentID, _ := ctx.UserValue("id").(string)
	var req transport.CommentEditRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || commentID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Edit(stdCtx, authorID, commentID, req.Content); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a comment
// @Tags comments
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(ctx *fasthttp.RequestCtx) {
	authorID := h.userID(ctx)
	if authorID == "" {
		return
	}

	commentID, _ := ctx.UserValue("id").(string)
	if commentID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing comment id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, authorID, commentID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Approve a pending comment
// @Tags moderation
// @Router /api/v1/moderation/comments/{id}/approve [post]
func (h *CommentHandler) Approve(ctx *fasthttp.RequestCtx) {
	h.moderate(ctx, h.uc.Approve)
}

// @Summary Reject a pending comment
// @Tags moderation
// @Router /api/v1/moderation/comments/{id}/reject [post]
func (h *CommentHandler) Reject(ctx *fasthttp.RequestCtx) {
	h.moderate(ctx, h.uc.Reject)
}

func (h *CommentHandler) moderate(ctx *fasthttp.RequestCtx, decide func(ctx context.Context, authorID, commentID string) error) {
	moderatorRole := string(ctx.Request.Header.Peek("X-User-Role"))
	if moderatorRole != domain.RoleCurator && moderatorRole != domain.RoleAdmin {
		h.respondJSON(ctx, http.StatusForbidden, transport.NewError(string(domain.ErrCodeForbidden), "moderation requires curator role", nil))
		return
	}

	commentID, _ := ctx.UserValue("id").(string)
	var req transport.ModerationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || commentID == "" || req.AuthorID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := decide(stdCtx, req.AuthorID, commentID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
