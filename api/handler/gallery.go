package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/relichub/backend/api/transport"
	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/pkg/httpcontext"
	galleryUC "github.com/relichub/backend/usecase/gallery"
)

type GalleryHandler struct {
	baseHandler
	uc *galleryUC.UseCase
}

func NewGalleryHandler(uc *galleryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List galleries
// @Tags galleries
// @Router /api/v1/galleries [get]
func (h *GalleryHandler) List(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	galleries, err := h.uc.ListGalleries(stdCtx, ownerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, galleries)
}

// @Summary Create a gallery
// @Tags galleries
// @Router /api/v1/galleries [post]
func (h *GalleryHandler) Create(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	var req transport.GalleryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	gallery, err := h.uc.Create(stdCtx, ownerID, req.Name, req.Description)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, gallery)
}

// @Summary Rename a gallery
// @Tags galleries
// @Router /api/v1/galleries/{id} [put]
func (h *GalleryHandler) Rename(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	galleryID, _ := ctx.UserValue("id").(string)
	var req transport.GalleryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || galleryID == "" || req.Name == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Rename(stdCtx, ownerID, galleryID, req.Name, req.Description); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a gallery
// @Tags galleries
// @Router /api/v1/galleries/{id} [delete]
func (h *GalleryHandler) Delete(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	galleryID, _ := ctx.UserValue("id").(string)
	if galleryID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing gallery id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, ownerID, galleryID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Add a relic to a gallery
// @Tags galleries
// @Router /api/v1/galleries/{id}/relics [post]
func (h *GalleryHandler) AddRelic(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	galleryID, _ := ctx.UserValue("id").(string)
	var req transport.GalleryRelicRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || galleryID == "" || req.RelicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AddRelic(stdCtx, ownerID, galleryID, req.RelicID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Remove a relic from a gallery
// @Tags galleries
// @Router /api/v1/galleries/{id}/relics/{relic_id} [delete]
func (h *GalleryHandler) RemoveRelic(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	galleryID, _ := ctx.UserValue("id").(string)
	relicID, _ := ctx.UserValue("relic_id").(string)
	if galleryID == "" || relicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing gallery or relic id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RemoveRelic(stdCtx, ownerID, galleryID, relicID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Set a gallery's cover relic
// @Tags galleries
// @Router /api/v1/galleries/{id}/cover [put]
func (h *GalleryHandler) SetCover(ctx *fasthttp.RequestCtx) {
	ownerID := h.userID(ctx)
	if ownerID == "" {
		return
	}

	galleryID, _ := ctx.UserValue("id").(string)
	var req transport.GalleryRelicRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || galleryID == "" || req.RelicID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetCover(stdCtx, ownerID, galleryID, req.RelicID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
