package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
)

const goodModelResponse = `{
  "make": "Honda",
  "model": "Civic",
  "year": 2021,
  "color": "Blue",
  "price": 22500,
  "mileage": 15000,
  "bodyType": "Sedan",
  "fuelType": "Petrol",
  "transmission": "Automatic",
  "description": "A well kept compact sedan.",
  "confidence": 0.92
}`

func TestExtractListingDetails(t *testing.T) {
	svc := NewExtractionService(&fakeVision{response: goodModelResponse}, nopLogger{})

	attrs, err := svc.ExtractListingDetails(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("ExtractListingDetails: %v", err)
	}
	if attrs.Make != "Honda" || attrs.Model != "Civic" {
		t.Fatalf("unexpected make/model: %s %s", attrs.Make, attrs.Model)
	}
	if attrs.Year != 2021 || attrs.Price != 22500 || attrs.Mileage != 15000 {
		t.Fatalf("unexpected numerics: year=%d price=%v mileage=%d", attrs.Year, attrs.Price, attrs.Mileage)
	}
	if attrs.Confidence != 0.92 {
		t.Fatalf("unexpected confidence: %v", attrs.Confidence)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	svc := NewExtractionService(&fakeVision{response: "```json\n" + goodModelResponse + "\n```"}, nopLogger{})

	attrs, err := svc.ExtractListingDetails(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("expected fenced response to parse: %v", err)
	}
	if attrs.BodyType != "Sedan" {
		t.Fatalf("unexpected body type: %s", attrs.BodyType)
	}
}

func TestExtractStringNumerics(t *testing.T) {
	response := `{
  "make": "Ford",
  "model": "F-150",
  "year": "2019",
  "color": "White",
  "price": "$38,500",
  "mileage": "42,000",
  "bodyType": "Truck",
  "fuelType": "Petrol",
  "transmission": "Automatic",
  "description": "Workhorse pickup.",
  "confidence": "0.8"
}`
	svc := NewExtractionService(&fakeVision{response: response}, nopLogger{})

	attrs, err := svc.ExtractListingDetails(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("ExtractListingDetails: %v", err)
	}
	if attrs.Year != 2019 {
		t.Fatalf("expected year 2019, got %d", attrs.Year)
	}
	if attrs.Price != 38500 {
		t.Fatalf("expected price 38500, got %v", attrs.Price)
	}
	if attrs.Mileage != 42000 {
		t.Fatalf("expected mileage 42000, got %d", attrs.Mileage)
	}
	if attrs.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", attrs.Confidence)
	}
}

func TestExtractMissingFields(t *testing.T) {
	// High confidence does not rescue a response lacking required fields.
	response := `{"make": "Tesla", "model": "Model 3", "confidence": 0.95}`
	svc := NewExtractionService(&fakeVision{response: response}, nopLogger{})

	_, err := svc.ExtractListingDetails(context.Background(), []byte("img"), "image/jpeg")
	var missing *domain.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if len(missing.Fields) != 8 {
		t.Fatalf("expected 8 missing fields, got %v", missing.Fields)
	}
}

func TestExtractUnparseableResponse(t *testing.T) {
	svc := NewExtractionService(&fakeVision{response: "I cannot identify this vehicle."}, nopLogger{})

	_, err := svc.ExtractListingDetails(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestExtractModelFailure(t *testing.T) {
	svc := NewExtractionService(&fakeVision{err: errors.New("quota exceeded")}, nopLogger{})

	_, err := svc.ExtractSearchFilters(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, domain.ErrModelInvocation) {
		t.Fatalf("expected ErrModelInvocation, got %v", err)
	}
}

func TestChat(t *testing.T) {
	svc := NewExtractionService(&fakeVision{response: "  The Civic is a compact sedan.  "}, nopLogger{})

	reply, err := svc.Chat(context.Background(), "Tell me about the Civic", "")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "The Civic is a compact sedan." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	svc := NewExtractionService(&fakeVision{}, nopLogger{})

	var verrs domain.ValidationErrors
	if _, err := svc.Chat(context.Background(), "   ", ""); !errors.As(err, &verrs) {
		t.Fatalf("expected validation error for blank message, got %v", err)
	}
}
