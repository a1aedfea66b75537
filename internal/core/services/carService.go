package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var imageDataURLRe = regexp.MustCompile(`^data:image/([a-zA-Z0-9]+);base64,`)

// CarService owns the inventory: listing intake with image storage,
// status/featured updates, search, and deletion with best-effort image
// cleanup.
type CarService struct {
	carRepo  ports.CarRepository
	storage  ports.ObjectStoragePort
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
}

func NewCarService(
	carRepo ports.CarRepository,
	storage ports.ObjectStoragePort,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *CarService {
	return &CarService{
		carRepo:  carRepo,
		storage:  storage,
		logger:   logger,
		validate: validate,
		cache:    cache,
	}
}

// AddCar validates the listing fields, stores the images under the car's
// folder and persists the record. Image entries that are not well-formed
// data URLs are skipped with a warning; a storage write failure aborts the
// whole operation.
func (s *CarService) AddCar(ctx context.Context, fields CarFields, imageDataURLs []string) (*domain.Car, []string, error) {
	validated, verrs := ValidateCarFields(fields)
	if verrs != nil {
		return nil, nil, verrs
	}

	carID := uuid.New()

	imageURLs, warnings, err := s.storeCarImages(ctx, carID, imageDataURLs)
	if err != nil {
		return nil, warnings, err
	}

	car := &domain.Car{
		ID:           carID,
		Make:         validated.Make,
		Model:        validated.Model,
		Year:         validated.Year,
		Price:        validated.Price,
		Mileage:      validated.Mileage,
		Color:        validated.Color,
		FuelType:     validated.FuelType,
		Transmission: validated.Transmission,
		BodyType:     validated.BodyType,
		Seats:        validated.Seats,
		Description:  validated.Description,
		Status:       validated.Status,
		Featured:     validated.Featured,
		Images:       imageURLs,
	}

	if err := s.validate.Struct(car); err != nil {
		s.logger.Error("Car validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, warnings, fmt.Errorf("validation error: %w", err)
	}

	created, err := s.carRepo.CreateCar(ctx, car)
	if err != nil {
		s.logger.Error("Failed to create car", map[string]interface{}{
			"error":  err.Error(),
			"car_id": carID,
		})
		return nil, warnings, err
	}

	s.logger.Info("Car listed", map[string]interface{}{
		"car_id": created.ID,
		"make":   created.Make,
		"model":  created.Model,
		"images": len(created.Images),
	})

	return created, warnings, nil
}

func (s *CarService) GetCar(ctx context.Context, carID string) (*domain.Car, error) {
	carUUID, err := uuid.Parse(carID)
	if err != nil {
		return nil, fmt.Errorf("invalid car ID: %w", err)
	}

	cacheKey := fmt.Sprintf("car:%s", carID)
	cachedData, err := s.cache.Get(cacheKey)
	if err == nil {
		var cachedCar domain.Car
		if err := json.Unmarshal(cachedData, &cachedCar); err == nil {
			return &cachedCar, nil
		}
	}

	car, err := s.carRepo.GetCarByID(ctx, carUUID)
	if err != nil {
		return nil, err
	}

	carData, err := json.Marshal(car)
	if err != nil {
		s.logger.Warn("Failed to marshal car for cache", map[string]interface{}{
			"error":  err.Error(),
			"car_id": carID,
		})
	} else {
		if err := s.cache.Set(cacheKey, carData, 15*time.Minute); err != nil {
			s.logger.Warn("Failed to cache car", map[string]interface{}{
				"error":  err.Error(),
				"car_id": carID,
			})
		}
	}

	return car, nil
}

func (s *CarService) ListCars(ctx context.Context, filter domain.CarFilter) ([]*domain.Car, error) {
	cars, err := s.carRepo.ListCars(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list cars", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return cars, nil
}

// UpdateCarStatus applies only the supplied fields; a nil field leaves the
// current value untouched.
func (s *CarService) UpdateCarStatus(ctx context.Context, carID string, update domain.CarStatusUpdate) error {
	carUUID, err := uuid.Parse(carID)
	if err != nil {
		return fmt.Errorf("invalid car ID: %w", err)
	}

	if update.Status != nil && !update.Status.Valid() {
		return domain.ValidationErrors{{Field: "status", Message: "unknown status"}}
	}

	if err := s.carRepo.UpdateCarStatus(ctx, carUUID, update); err != nil {
		return err
	}

	if err := s.cache.Delete(fmt.Sprintf("car:%s", carID)); err != nil {
		s.logger.Warn("Failed to invalidate car cache", map[string]interface{}{
			"error":  err.Error(),
			"car_id": carID,
		})
	}

	s.logger.Info("Car status updated", map[string]interface{}{
		"car_id": carID,
	})
	return nil
}

// DeleteCar removes the listing (cancelling its active bookings in the
// same transaction) and then cleans up the stored images. Storage cleanup
// failures never block the deletion; they come back as warnings so an
// operator can reconcile orphaned assets later.
func (s *CarService) DeleteCar(ctx context.Context, carID string) ([]string, error) {
	carUUID, err := uuid.Parse(carID)
	if err != nil {
		return nil, fmt.Errorf("invalid car ID: %w", err)
	}

	car, err := s.carRepo.DeleteCar(ctx, carUUID)
	if err != nil {
		return nil, err
	}

	warnings := s.removeCarImages(ctx, car.Images)

	if err := s.cache.Delete(fmt.Sprintf("car:%s", carID)); err != nil {
		s.logger.Warn("Failed to invalidate car cache", map[string]interface{}{
			"error":  err.Error(),
			"car_id": carID,
		})
	}

	s.logger.Info("Car deleted", map[string]interface{}{
		"car_id":   carID,
		"warnings": len(warnings),
	})
	return warnings, nil
}

// storeCarImages decodes each data URL and uploads it under the car's
// folder. Malformed entries are skipped; the operation fails only when
// every entry was skipped, or when an actual upload fails.
func (s *CarService) storeCarImages(ctx context.Context, carID uuid.UUID, dataURLs []string) ([]string, []string, error) {
	var urls []string
	var warnings []string

	now := time.Now().UnixMilli()
	for i, dataURL := range dataURLs {
		match := imageDataURLRe.FindStringSubmatch(dataURL)
		if match == nil {
			s.logger.Warn("Skipping invalid image data", map[string]interface{}{
				"car_id": carID,
				"index":  i,
			})
			warnings = append(warnings, fmt.Sprintf("image %d skipped: not a valid image data URL", i))
			continue
		}

		ext := match[1]
		if ext == "" {
			ext = "jpeg"
		}

		payload := dataURL[len(match[0]):]
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			s.logger.Warn("Skipping undecodable image data", map[string]interface{}{
				"car_id": carID,
				"index":  i,
				"error":  err.Error(),
			})
			warnings = append(warnings, fmt.Sprintf("image %d skipped: invalid base64 payload", i))
			continue
		}

		path := fmt.Sprintf("cars/%s/image-%d-%d.%s", carID, now, i, ext)
		url, err := s.storage.Upload(ctx, path, data, "image/"+ext)
		if err != nil {
			s.logger.Error("Failed to upload image", map[string]interface{}{
				"error":  err.Error(),
				"car_id": carID,
				"path":   path,
			})
			return nil, warnings, fmt.Errorf("failed to upload image: %w", err)
		}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return nil, warnings, domain.ErrNoValidImages
	}
	return urls, warnings, nil
}

// removeCarImages is best effort: every failure becomes a warning, none of
// them propagate.
func (s *CarService) removeCarImages(ctx context.Context, imageURLs []string) []string {
	var warnings []string
	for _, url := range imageURLs {
		path, ok := storagePathFromURL(url)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("could not derive storage path from %s", url))
			continue
		}
		if err := s.storage.Remove(ctx, path); err != nil {
			s.logger.Warn("Failed to delete image", map[string]interface{}{
				"error": err.Error(),
				"path":  path,
			})
			warnings = append(warnings, fmt.Sprintf("failed to delete %s", path))
		}
	}
	return warnings
}

func storagePathFromURL(url string) (string, bool) {
	_, after, found := strings.Cut(url, "/files/")
	if !found || after == "" {
		return "", false
	}
	return after, true
}
