package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/relichub/backend/api/transport"
	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/pkg/httpcontext"
	favoritesUC "github.com/relichub/backend/usecase/favorites"
)

type FavoriteHandler struct {
	baseHandler
	uc *favoritesUC.UseCase
}

func NewFavoriteHandler(uc *favoritesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List favorites
// @Tags favorites
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) List(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.ListFavorites(stdCtx, ownerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Favorite a relic
// @Tags favorites
// @Router /api/v1/favorites [post]
func (h *FavoriteHandler) Add(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	var req transport.FavoriteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.RelicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	item, err := h.uc.AddFavorite(stdCtx, ownerID, req.RelicID, req.Note)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, item)
}

// @Summary Remove a favorite
// @Tags favorites
// @Router /api/v1/favorites/{relic_id} [delete]
func (h *FavoriteHandler) Remove(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	relicID, _ := ctx.UserValue("relic_id").(string)
	if relicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing relic id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RemoveFavorite(stdCtx, ownerID, relicID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Update a favorite's note
// @Tags favorites
// @Router /api/v1/favorites/{relic_id}/note [put]
func (h *FavoriteHandler) UpdateNote(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	relicID, _ := ctx.UserValue("relic_id").(string)
	if relicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing relic id", nil))
		return
	}

	var req transport.FavoriteNoteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.UpdateNote(stdCtx, ownerID, relicID, req.Note); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Check whether a relic is favorited
// @Tags favorites
// @Router /api/v1/favorites/{relic_id} [get]
func (h *FavoriteHandler) Check(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	relicID, _ := ctx.UserValue("relic_id").(string)
	if relicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing relic id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	favorited, err := h.uc.IsFavorited(stdCtx, ownerID, relicID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"favorited": favorited})
}
