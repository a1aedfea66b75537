package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService *services.BookingService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewBookingHandler(
	bookingService *services.BookingService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
		metrics:        metrics,
	}
}

type BookTestDriveRequest struct {
	CarID       string `json:"car_id" binding:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	BookingDate string `json:"booking_date" binding:"required" example:"2024-05-01"`
	StartTime   string `json:"start_time" binding:"required" example:"10:00"`
	EndTime     string `json:"end_time" binding:"required" example:"11:00"`
	Notes       string `json:"notes,omitempty"`
}

type BookingResponse struct {
	ID          uuid.UUID `json:"id"`
	CarID       uuid.UUID `json:"car_id"`
	UserID      uuid.UUID `json:"user_id"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Count    int               `json:"count"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required" example:"CONFIRMED"`
}

func bookingToResponse(b *domain.TestDriveBooking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		CarID:       b.CarID,
		UserID:      b.UserID,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// @Summary Book a test drive
// @Description Creates a PENDING booking if the car is available and the slot is free
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BookTestDriveRequest true "Requested slot"
// @Success 201 {object} BookingResponse "Booking created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Slot already booked or car unavailable"
// @Router /bookings [post]
func (h *BookingHandler) BookTestDrive(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req BookTestDriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in book test drive", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid car ID")
		return
	}

	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid booking date, expected YYYY-MM-DD")
		return
	}

	booking, err := h.bookingService.RequestBooking(c.Request.Context(), services.RequestBookingInput{
		CarID:       carID,
		UserID:      payload.UserID,
		BookingDate: bookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
	})
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.Is(err, domain.ErrCarUnavailable):
			newErrorResponse(c, http.StatusConflict, "Car not available for test drive")
		case errors.Is(err, domain.ErrSlotConflict):
			newErrorResponse(c, http.StatusConflict, "This time slot is already booked. Please select another time.")
		case errors.As(err, &verrs):
			newValidationErrorResponse(c, verrs)
		default:
			h.logger.Error("Failed to book test drive", map[string]interface{}{
				"error":   err.Error(),
				"user_id": payload.UserID,
			})
			newErrorResponse(c, http.StatusInternalServerError, "Failed to book test drive")
		}
		return
	}

	c.JSON(http.StatusCreated, bookingToResponse(booking))
}

// @Summary My test drives
// @Description Lists the signed-in user's bookings, newest first
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ListBookingsResponse
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /bookings/my [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookings, err := h.bookingService.GetUserBookings(c.Request.Context(), payload.UserID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get bookings")
		return
	}

	resp := ListBookingsResponse{Bookings: make([]BookingResponse, 0, len(bookings)), Count: len(bookings)}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, bookingToResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a booking
// @Description Owner or admin only; a second cancel reports an error rather than succeeding silently
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} successResponse
// @Failure 403 {object} errorResponse "Not the owner"
// @Failure 404 {object} errorResponse "Booking not found"
// @Failure 409 {object} errorResponse "Already cancelled or completed"
// @Router /bookings/{id} [delete]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	err = h.bookingService.CancelBooking(c.Request.Context(), bookingID, payload.UserID, payload.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			newErrorResponse(c, http.StatusNotFound, "Booking not found")
		case errors.Is(err, domain.ErrForbidden):
			newErrorResponse(c, http.StatusForbidden, "Unauthorized to cancel this booking")
		case errors.Is(err, domain.ErrAlreadyCancelled):
			newErrorResponse(c, http.StatusConflict, "Booking is already cancelled")
		case errors.Is(err, domain.ErrAlreadyCompleted):
			newErrorResponse(c, http.StatusConflict, "Cannot cancel a completed booking")
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to cancel booking")
		}
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Test drive cancelled successfully"})
}

// @Summary List bookings (admin)
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param car_id query string false "Filter by car"
// @Param status query string false "Filter by status"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} ListBookingsResponse
// @Router /admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	filter := domain.BookingFilter{
		Status: domain.BookingStatus(c.Query("status")),
	}
	if v := c.Query("car_id"); v != "" {
		carID, err := uuid.Parse(v)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid car ID")
			return
		}
		filter.CarID = carID
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Date = date
	}

	bookings, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list bookings")
		return
	}

	resp := ListBookingsResponse{Bookings: make([]BookingResponse, 0, len(bookings)), Count: len(bookings)}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, bookingToResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update booking status (admin)
// @Description Confirm, complete, cancel or mark a booking as no-show
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body UpdateBookingStatusRequest true "Target status"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} errorResponse "Booking not found"
// @Failure 409 {object} errorResponse "Transition not allowed"
// @Router /admin/bookings/{id}/status [patch]
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(c.Request.Context(), bookingID, domain.BookingStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			newErrorResponse(c, http.StatusNotFound, "Booking not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			newErrorResponse(c, http.StatusConflict, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to update booking")
		}
		return
	}

	c.JSON(http.StatusOK, bookingToResponse(booking))
}
