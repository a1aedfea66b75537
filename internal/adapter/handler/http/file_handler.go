package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored car images back out of object storage, so the
// public URLs returned at upload time resolve.
type FileHandler struct {
	storage ports.ObjectStoragePort
	logger  ports.LoggerPort
	metrics ports.MetricsPort
}

func NewFileHandler(storage ports.ObjectStoragePort, logger ports.LoggerPort, metrics ports.MetricsPort) *FileHandler {
	return &FileHandler{
		storage: storage,
		logger:  logger,
		metrics: metrics,
	}
}

// @Summary Serve a stored car image
// @Tags files
// @Produce octet-stream
// @Param carID path string true "Car ID"
// @Param name path string true "Image file name"
// @Success 200 {file} binary
// @Failure 404 {object} errorResponse "Image not found"
// @Router /files/cars/{carID}/{name} [get]
func (h *FileHandler) ServeCarImage(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	path := fmt.Sprintf("cars/%s/%s", c.Param("carID"), c.Param("name"))

	data, contentType, err := h.storage.Open(c.Request.Context(), path)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Image not found")
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
