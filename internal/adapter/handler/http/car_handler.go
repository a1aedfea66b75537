package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CarHandler struct {
	carService        *services.CarService
	extractionService *services.ExtractionService
	logger            ports.LoggerPort
	metrics           ports.MetricsPort
}

func NewCarHandler(
	carService *services.CarService,
	extractionService *services.ExtractionService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *CarHandler {
	return &CarHandler{
		carService:        carService,
		extractionService: extractionService,
		logger:            logger,
		metrics:           metrics,
	}
}

type AddCarRequest struct {
	Make         string   `json:"make" binding:"required" example:"Toyota"`
	Model        string   `json:"model" binding:"required" example:"Corolla"`
	Year         int      `json:"year" binding:"required" example:"2021"`
	Price        float64  `json:"price" example:"18500"`
	Mileage      int      `json:"mileage" example:"32000"`
	Color        string   `json:"color,omitempty" example:"white"`
	FuelType     string   `json:"fuel_type" binding:"required" example:"Petrol"`
	Transmission string   `json:"transmission,omitempty" example:"Automatic"`
	BodyType     string   `json:"body_type,omitempty" example:"Sedan"`
	Seats        *int     `json:"seats,omitempty" example:"5"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status,omitempty" example:"AVAILABLE"`
	Featured     bool     `json:"featured"`
	Images       []string `json:"images" binding:"required"`
}

type CarResponse struct {
	ID           uuid.UUID `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int       `json:"mileage"`
	Color        string    `json:"color,omitempty"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission,omitempty"`
	BodyType     string    `json:"body_type,omitempty"`
	Seats        *int      `json:"seats,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	Featured     bool      `json:"featured"`
	Images       []string  `json:"images"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AddCarResponse struct {
	Car      CarResponse `json:"car"`
	Warnings []string    `json:"warnings,omitempty"`
}

type ListCarsResponse struct {
	Cars  []CarResponse `json:"cars"`
	Count int           `json:"count"`
}

type UpdateCarStatusRequest struct {
	Status   *string `json:"status,omitempty" example:"SOLD"`
	Featured *bool   `json:"featured,omitempty" example:"true"`
}

type DeleteCarResponse struct {
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

func carToResponse(car *domain.Car) CarResponse {
	return CarResponse{
		ID:           car.ID,
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		Price:        car.Price,
		Mileage:      car.Mileage,
		Color:        car.Color,
		FuelType:     car.FuelType,
		Transmission: car.Transmission,
		BodyType:     car.BodyType,
		Seats:        car.Seats,
		Description:  car.Description,
		Status:       string(car.Status),
		Featured:     car.Featured,
		Images:       car.Images,
		CreatedAt:    car.CreatedAt,
		UpdatedAt:    car.UpdatedAt,
	}
}

// @Summary Add a car listing
// @Description Creates a listing from validated fields plus base64 image data URLs
// @Tags cars
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AddCarRequest true "Listing fields and images"
// @Success 201 {object} AddCarResponse "Car created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin only"
// @Router /cars [post]
func (h *CarHandler) AddCar(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req AddCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in add car", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	fields := services.CarFields{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		Color:        req.Color,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		BodyType:     req.BodyType,
		Seats:        req.Seats,
		Description:  req.Description,
		Status:       domain.CarStatus(req.Status),
		Featured:     req.Featured,
	}

	car, warnings, err := h.carService.AddCar(c.Request.Context(), fields, req.Images)
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			newValidationErrorResponse(c, verrs)
		case errors.Is(err, domain.ErrNoValidImages):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to add car", map[string]interface{}{
				"error": err.Error(),
			})
			newErrorResponse(c, http.StatusInternalServerError, "Failed to add car")
		}
		return
	}

	c.JSON(http.StatusCreated, AddCarResponse{
		Car:      carToResponse(car),
		Warnings: warnings,
	})
}

// @Summary List cars
// @Description Search and filter the inventory
// @Tags cars
// @Produce json
// @Param search query string false "Free-text search over make, model, color, body type and description"
// @Param status query string false "AVAILABLE, UNAVAILABLE or SOLD"
// @Param featured query bool false "Only featured listings"
// @Success 200 {object} ListCarsResponse
// @Router /cars [get]
func (h *CarHandler) ListCars(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	filter := domain.CarFilter{
		Search:   c.Query("search"),
		Make:     c.Query("make"),
		BodyType: c.Query("body_type"),
		Color:    c.Query("color"),
		Status:   domain.CarStatus(c.Query("status")),
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		filter.MaxPrice = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = v
	}

	cars, err := h.carService.ListCars(c.Request.Context(), filter)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list cars")
		return
	}

	resp := ListCarsResponse{Cars: make([]CarResponse, 0, len(cars)), Count: len(cars)}
	for _, car := range cars {
		resp.Cars = append(resp.Cars, carToResponse(car))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get a car
// @Tags cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} CarResponse
// @Failure 404 {object} errorResponse "Car not found"
// @Router /cars/{id} [get]
func (h *CarHandler) GetCar(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	car, err := h.carService.GetCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Car not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Invalid car ID")
		return
	}

	c.JSON(http.StatusOK, carToResponse(car))
}

// @Summary Update car status
// @Description Partial update of status and featured flags
// @Tags cars
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param request body UpdateCarStatusRequest true "Fields to update"
// @Success 200 {object} successResponse
// @Failure 404 {object} errorResponse "Car not found"
// @Router /cars/{id}/status [patch]
func (h *CarHandler) UpdateCarStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req UpdateCarStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	update := domain.CarStatusUpdate{Featured: req.Featured}
	if req.Status != nil {
		status := domain.CarStatus(*req.Status)
		update.Status = &status
	}

	err := h.carService.UpdateCarStatus(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.Is(err, domain.ErrCarNotFound):
			newErrorResponse(c, http.StatusNotFound, "Car not found")
		case errors.As(err, &verrs):
			newValidationErrorResponse(c, verrs)
		default:
			newErrorResponse(c, http.StatusBadRequest, "Failed to update car status")
		}
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Car updated"})
}

// @Summary Delete a car
// @Description Removes the listing, cancels its active bookings and cleans up its images best-effort
// @Tags cars
// @Security BearerAuth
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} DeleteCarResponse
// @Failure 404 {object} errorResponse "Car not found"
// @Router /cars/{id} [delete]
func (h *CarHandler) DeleteCar(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	warnings, err := h.carService.DeleteCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Car not found")
			return
		}
		h.logger.Error("Failed to delete car", map[string]interface{}{
			"error":  err.Error(),
			"car_id": c.Param("id"),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to delete car")
		return
	}

	c.JSON(http.StatusOK, DeleteCarResponse{
		Message:  "Car deleted",
		Warnings: warnings,
	})
}

// @Summary Search cars by photo
// @Description Derives make, body type and color filters from an uploaded image
// @Tags cars
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "Car photo"
// @Success 200 {object} ListCarsResponse
// @Failure 502 {object} errorResponse "Model call failed"
// @Router /ai/search [post]
func (h *CarHandler) SearchByImage(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	image, mimeType, ok := readImageUpload(c)
	if !ok {
		return
	}

	attrs, err := h.extractionService.ExtractSearchFilters(c.Request.Context(), image, mimeType)
	if err != nil {
		writeExtractionError(c, h.logger, err)
		return
	}

	cars, err := h.carService.ListCars(c.Request.Context(), domain.CarFilter{
		Make:     attrs.Make,
		BodyType: attrs.BodyType,
		Color:    attrs.Color,
		Status:   domain.CarAvailable,
	})
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to search cars")
		return
	}

	resp := ListCarsResponse{Cars: make([]CarResponse, 0, len(cars)), Count: len(cars)}
	for _, car := range cars {
		resp.Cars = append(resp.Cars, carToResponse(car))
	}
	c.JSON(http.StatusOK, resp)
}

func readImageUpload(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "image file is required")
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot open uploaded file")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot read uploaded file")
		return nil, "", false
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, true
}
