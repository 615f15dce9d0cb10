package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/response"
)

type AssistantHandler struct {
	assistant service.AssistantService
	logger    *zap.Logger
}

func NewAssistantHandler(assistant service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

type DrugInfoRequest struct {
	DrugName string `json:"drug_name" binding:"required"`
}

type SymptomCheckRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
	Action   string `json:"action"`
}

type ImageAnalysisRequest struct {
	ImageData string `json:"image_data" binding:"required"`
}

const (
	SymptomActionAnalyze = "analyze"
	SymptomActionPredict = "predict"
)

// DrugInfo returns a clinical summary for a drug name.
func (h *AssistantHandler) DrugInfo(c *gin.Context) {
	var req DrugInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "drug_name is required")
		return
	}

	text, err := h.assistant.DrugInfo(c.Request.Context(), req.DrugName)
	if err != nil {
		writeAssistantError(c, h.logger, err)
		return
	}
	response.Success(c, TextResponse{Response: text})
}

// SymptomCheck recommends treatments ("analyze", the default) or predicts
// likely conditions ("predict").
func (h *AssistantHandler) SymptomCheck(c *gin.Context) {
	var req SymptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "symptoms are required")
		return
	}

	var (
		text string
		err  error
	)
	switch req.Action {
	case "", SymptomActionAnalyze:
		text, err = h.assistant.SymptomAdvice(c.Request.Context(), req.Symptoms)
	case SymptomActionPredict:
		text, err = h.assistant.PredictConditions(c.Request.Context(), req.Symptoms)
	default:
		response.BadRequest(c, "action must be analyze or predict")
		return
	}
	if err != nil {
		writeAssistantError(c, h.logger, err)
		return
	}
	response.Success(c, TextResponse{Response: text})
}

// ImageAnalysis identifies a medicine from a data:image/ URL.
func (h *AssistantHandler) ImageAnalysis(c *gin.Context) {
	var req ImageAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "image_data is required")
		return
	}

	text, err := h.assistant.AnalyzeImage(c.Request.Context(), req.ImageData)
	if err != nil {
		writeAssistantError(c, h.logger, err)
		return
	}
	response.Success(c, TextResponse{Response: text})
}
