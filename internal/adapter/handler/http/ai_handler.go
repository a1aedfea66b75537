package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/services"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	extractionService *services.ExtractionService
	logger            ports.LoggerPort
	metrics           ports.MetricsPort
}

func NewAIHandler(
	extractionService *services.ExtractionService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *AIHandler {
	return &AIHandler{
		extractionService: extractionService,
		logger:            logger,
		metrics:           metrics,
	}
}

type ExtractCarResponse struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Color        string  `json:"color"`
	BodyType     string  `json:"body_type"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required" example:"What should I check before buying a used diesel?"`
	History string `json:"history,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// @Summary Extract listing details from a photo
// @Description Runs the vision model over a car photo and returns validated attributes to pre-fill the add-listing form
// @Tags ai
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "Car photo"
// @Success 200 {object} ExtractCarResponse
// @Failure 422 {object} errorResponse "Response failed validation"
// @Failure 502 {object} errorResponse "Model call failed"
// @Router /ai/extract [post]
func (h *AIHandler) ExtractCarDetails(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	image, mimeType, ok := readImageUpload(c)
	if !ok {
		return
	}

	attrs, err := h.extractionService.ExtractListingDetails(c.Request.Context(), image, mimeType)
	if err != nil {
		writeExtractionError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ExtractCarResponse{
		Make:         attrs.Make,
		Model:        attrs.Model,
		Year:         attrs.Year,
		Color:        attrs.Color,
		BodyType:     attrs.BodyType,
		Price:        attrs.Price,
		Mileage:      attrs.Mileage,
		FuelType:     attrs.FuelType,
		Transmission: attrs.Transmission,
		Description:  attrs.Description,
		Confidence:   attrs.Confidence,
	})
}

// @Summary Automotive chat
// @Description Answers car questions grounded in the supplied chat history
// @Tags ai
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ChatRequest true "User message and chat log"
// @Success 200 {object} ChatResponse
// @Failure 502 {object} errorResponse "Model call failed"
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	response, err := h.extractionService.Chat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		writeExtractionError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: response})
}

// Extraction failures are surfaced as "try again or enter manually", never
// retried here.
func writeExtractionError(c *gin.Context, logger ports.LoggerPort, err error) {
	var missing *domain.MissingFieldsError
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &missing):
		newErrorResponse(c, http.StatusUnprocessableEntity, missing.Error())
	case errors.Is(err, domain.ErrParse):
		newErrorResponse(c, http.StatusUnprocessableEntity, "Failed to parse AI response")
	case errors.As(err, &verrs):
		newValidationErrorResponse(c, verrs)
	case errors.Is(err, domain.ErrAIConfiguration):
		newErrorResponse(c, http.StatusServiceUnavailable, "AI features are not configured")
	default:
		logger.Error("Model invocation failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadGateway, "AI request failed, try again or enter details manually")
	}
}
