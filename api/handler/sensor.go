package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/relichub/backend/api/transport"
	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/pkg/httpcontext"
	"github.com/relichub/backend/repository"
	ingestUC "github.com/relichub/backend/usecase/ingest"
)

type SensorHandler struct {
	baseHandler
	uc *ingestUC.UseCase
}

func NewSensorHandler(uc *ingestUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Ingest a sensor reading
// @Tags sensors
// @Router /api/v1/sensors/readings [post]
func (h *SensorHandler) Record(ctx *fasthttp.RequestCtx) {
	var req transport.ReadingRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	reading := &domain.SensorReading{
		ID:         req.ID,
		SensorID:   req.SensorID,
		RelicID:    req.RelicID,
		Metric:     req.Metric,
		Value:      req.Value,
		RecordedAt: req.RecordedAt,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Record(stdCtx, reading); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusAccepted, reading)
}

// @Summary List recent sensor readings
// @Tags sensors
// @Router /api/v1/sensors/readings [get]
func (h *SensorHandler) Recent(ctx *fasthttp.RequestCtx) {
	filter := repository.ReadingFilter{
		SensorID: string(ctx.QueryArgs().Peek("sensor_id")),
		Metric:   string(ctx.QueryArgs().Peek("metric")),
		Limit:    parseInt(string(ctx.QueryArgs().Peek("limit")), 100),
		Offset:   parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	readings, err := h.uc.Recent(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, readings)
}
