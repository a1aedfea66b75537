package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func newCarFixture(t *testing.T) (*CarService, *fakeCarRepo, *fakeStorage, *fakeCache) {
	t.Helper()
	carRepo := newFakeCarRepo()
	storage := newFakeStorage()
	cache := newFakeCache()
	svc := NewCarService(carRepo, storage, nopLogger{}, validator.New(), cache)
	return svc, carRepo, storage, cache
}

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestAddCar(t *testing.T) {
	svc, _, storage, _ := newCarFixture(t)

	car, warnings, err := svc.AddCar(context.Background(), validCarFields(), []string{
		pngDataURL("front"),
		pngDataURL("rear"),
	})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(car.Images) != 2 {
		t.Fatalf("expected 2 image URLs, got %v", car.Images)
	}
	for _, url := range car.Images {
		if !strings.Contains(url, "/files/cars/"+car.ID.String()+"/") {
			t.Fatalf("image URL not under car folder: %s", url)
		}
	}
	if len(storage.objects) != 2 {
		t.Fatalf("expected 2 stored objects, got %d", len(storage.objects))
	}
}

func TestAddCarSkipsMalformedImages(t *testing.T) {
	svc, _, _, _ := newCarFixture(t)

	car, warnings, err := svc.AddCar(context.Background(), validCarFields(), []string{
		pngDataURL("front"),
		"not-a-data-url",
		"data:image/png;base64,%%%not-base64%%%",
	})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	if len(car.Images) != 1 {
		t.Fatalf("expected 1 stored image, got %v", car.Images)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestAddCarNoValidImages(t *testing.T) {
	svc, _, _, _ := newCarFixture(t)

	_, _, err := svc.AddCar(context.Background(), validCarFields(), []string{
		"garbage",
		"data:image/png;base64,***",
	})
	if !errors.Is(err, domain.ErrNoValidImages) {
		t.Fatalf("expected ErrNoValidImages, got %v", err)
	}
}

func TestAddCarUploadFailureAborts(t *testing.T) {
	svc, carRepo, storage, _ := newCarFixture(t)
	storage.uploadErr = errors.New("bucket unavailable")

	_, _, err := svc.AddCar(context.Background(), validCarFields(), []string{pngDataURL("front")})
	if err == nil {
		t.Fatalf("expected upload failure to abort AddCar")
	}
	if len(carRepo.cars) != 0 {
		t.Fatalf("no car must be persisted after upload failure")
	}
}

func TestAddCarInvalidFields(t *testing.T) {
	svc, _, storage, _ := newCarFixture(t)

	in := validCarFields()
	in.Make = ""
	_, _, err := svc.AddCar(context.Background(), in, []string{pngDataURL("front")})

	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(storage.objects) != 0 {
		t.Fatalf("no images must be uploaded when validation fails")
	}
}

func TestGetCarUsesCache(t *testing.T) {
	svc, carRepo, _, _ := newCarFixture(t)
	ctx := context.Background()

	car, _, err := svc.AddCar(ctx, validCarFields(), []string{pngDataURL("front")})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}

	if _, err := svc.GetCar(ctx, car.ID.String()); err != nil {
		t.Fatalf("GetCar: %v", err)
	}

	// Second read must come from the cache.
	delete(carRepo.cars, car.ID)
	got, err := svc.GetCar(ctx, car.ID.String())
	if err != nil {
		t.Fatalf("cached GetCar: %v", err)
	}
	if got.ID != car.ID {
		t.Fatalf("expected cached car %s, got %s", car.ID, got.ID)
	}
}

func TestUpdateCarStatus(t *testing.T) {
	svc, carRepo, _, cache := newCarFixture(t)
	ctx := context.Background()

	car, _, err := svc.AddCar(ctx, validCarFields(), []string{pngDataURL("front")})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	if _, err := svc.GetCar(ctx, car.ID.String()); err != nil {
		t.Fatalf("GetCar: %v", err)
	}

	sold := domain.CarSold
	featured := true
	if err := svc.UpdateCarStatus(ctx, car.ID.String(), domain.CarStatusUpdate{Status: &sold, Featured: &featured}); err != nil {
		t.Fatalf("UpdateCarStatus: %v", err)
	}
	if carRepo.cars[car.ID].Status != domain.CarSold || !carRepo.cars[car.ID].Featured {
		t.Fatalf("update not applied: %+v", carRepo.cars[car.ID])
	}
	if _, err := cache.Get("car:" + car.ID.String()); err == nil {
		t.Fatalf("expected cache entry invalidated")
	}

	bad := domain.CarStatus("PARKED")
	var verrs domain.ValidationErrors
	if err := svc.UpdateCarStatus(ctx, car.ID.String(), domain.CarStatusUpdate{Status: &bad}); !errors.As(err, &verrs) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestDeleteCarCleansUpImages(t *testing.T) {
	svc, carRepo, storage, _ := newCarFixture(t)
	ctx := context.Background()

	car, _, err := svc.AddCar(ctx, validCarFields(), []string{pngDataURL("front"), pngDataURL("rear")})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}

	warnings, err := svc.DeleteCar(ctx, car.ID.String())
	if err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected all images removed, %d left", len(storage.objects))
	}
	if _, ok := carRepo.cars[car.ID]; ok {
		t.Fatalf("car must be gone from the repository")
	}
}

func TestDeleteCarStorageFailureIsWarning(t *testing.T) {
	svc, carRepo, storage, _ := newCarFixture(t)
	ctx := context.Background()

	car, _, err := svc.AddCar(ctx, validCarFields(), []string{pngDataURL("front"), pngDataURL("rear")})
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	storage.removeErr = errors.New("bucket unavailable")

	warnings, err := svc.DeleteCar(ctx, car.ID.String())
	if err != nil {
		t.Fatalf("DeleteCar must succeed despite storage failure: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected a warning per image, got %v", warnings)
	}
	if _, ok := carRepo.cars[car.ID]; ok {
		t.Fatalf("car must be deleted even when cleanup fails")
	}
}

func TestDeleteCarNotFound(t *testing.T) {
	svc, _, _, _ := newCarFixture(t)
	if _, err := svc.DeleteCar(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
}

func TestStoragePathFromURL(t *testing.T) {
	path, ok := storagePathFromURL("http://storage.local/files/cars/abc/image-1-0.png")
	if !ok || path != "cars/abc/image-1-0.png" {
		t.Fatalf("unexpected path: %q ok=%v", path, ok)
	}
	if _, ok := storagePathFromURL("http://storage.local/cars/abc.png"); ok {
		t.Fatalf("expected URL without /files/ segment to fail")
	}
}
