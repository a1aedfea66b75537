package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"
)

const listingDetailsPrompt = `Analyze this car image and extract the following information:
1. Make (manufacturer)
2. Model
3. Year (approximately)
4. Color
5. Body type (SUV, Sedan, Hatchback, etc.)
6. Mileage (your best guess)
7. Fuel type (your best guess)
8. Transmission type (your best guess)
9. Price (your best guess)
10. Short description as to be added to a car listing

Format your response as a clean JSON object with these fields:
{
  "make": "",
  "model": "",
  "year": 0000,
  "color": "",
  "price": 0,
  "mileage": 0,
  "bodyType": "",
  "fuelType": "",
  "transmission": "",
  "description": "",
  "confidence": 0.0
}

For confidence, provide a value between 0 and 1 representing how confident you are in your overall identification.
Only respond with the JSON object, nothing else.`

const searchFiltersPrompt = `Analyze this car image. The user wants to find similar cars in an inventory, so the make, body type and color must be as accurate as you can manage; give your best guess for everything else.

Format your response as a clean JSON object with these fields:
{
  "make": "",
  "model": "",
  "year": 0000,
  "color": "",
  "price": 0,
  "mileage": 0,
  "bodyType": "",
  "fuelType": "",
  "transmission": "",
  "description": "",
  "confidence": 0.0
}

For confidence, provide a value between 0 and 1 representing how confident you are in your overall identification.
Only respond with the JSON object, nothing else.`

const chatPrompt = `You are a knowledgeable and helpful automotive expert. Your goal is to provide accurate and helpful information about cars, including models, maintenance, buying advice, and technical specifications.

Chat Log:
%s

User Input: "%s"

Instructions:
- Analyze the user's question based on the chat history.
- Provide practical and accurate information about cars in normal text.
- Cover topics like car models, specifications, maintenance tips, buying advice, and troubleshooting.
- If the user asks about something unrelated to cars, politely redirect them and mention you can only provide information about automotive topics.
- If the user is greeting you, greet them back and briefly explain your purpose.
- Keep responses concise but informative - minimum one line, maximum one paragraph.`

var codeFenceRe = regexp.MustCompile("```(?:json)?\n?")

// ExtractionService runs the image -> vision model -> validated record
// pipeline. Both the add-listing and the search-by-photo flows go through
// the same pipeline; only the instruction text differs.
type ExtractionService struct {
	vision ports.VisionPort
	logger ports.LoggerPort
}

func NewExtractionService(vision ports.VisionPort, logger ports.LoggerPort) *ExtractionService {
	return &ExtractionService{
		vision: vision,
		logger: logger,
	}
}

// ExtractListingDetails pulls the full attribute set from a car photo to
// pre-fill the add-listing form.
func (s *ExtractionService) ExtractListingDetails(ctx context.Context, image []byte, mimeType string) (*domain.ExtractedCarAttributes, error) {
	return s.extract(ctx, image, mimeType, listingDetailsPrompt)
}

// ExtractSearchFilters runs the same pipeline with a search-oriented
// instruction; callers consume only make, body type and color.
func (s *ExtractionService) ExtractSearchFilters(ctx context.Context, image []byte, mimeType string) (*domain.ExtractedCarAttributes, error) {
	return s.extract(ctx, image, mimeType, searchFiltersPrompt)
}

func (s *ExtractionService) extract(ctx context.Context, image []byte, mimeType, prompt string) (*domain.ExtractedCarAttributes, error) {
	text, err := s.vision.GenerateFromImage(ctx, image, mimeType, prompt)
	if err != nil {
		s.logger.Error("Vision model call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrModelInvocation, err)
	}

	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		s.logger.Warn("Model response is not valid JSON", map[string]interface{}{
			"error":    err.Error(),
			"response": text,
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	var missing []string
	for _, field := range domain.ExtractionRequiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingFieldsError{Fields: missing}
	}

	attrs := &domain.ExtractedCarAttributes{
		Make:         asString(raw["make"]),
		Model:        asString(raw["model"]),
		Year:         asInt(raw["year"]),
		Color:        asString(raw["color"]),
		BodyType:     asString(raw["bodyType"]),
		Price:        asFloat(raw["price"]),
		Mileage:      asInt(raw["mileage"]),
		FuelType:     asString(raw["fuelType"]),
		Transmission: asString(raw["transmission"]),
		Description:  asString(raw["description"]),
		Confidence:   asFloat(raw["confidence"]),
	}

	s.logger.Info("Extracted car attributes from image", map[string]interface{}{
		"make":       attrs.Make,
		"model":      attrs.Model,
		"confidence": attrs.Confidence,
	})

	return attrs, nil
}

// Chat answers an automotive question grounded in the running chat log.
func (s *ExtractionService) Chat(ctx context.Context, userInput, chatHistory string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", domain.ValidationErrors{{Field: "message", Message: "message is required"}}
	}

	text, err := s.vision.GenerateText(ctx, fmt.Sprintf(chatPrompt, chatHistory, userInput))
	if err != nil {
		s.logger.Error("Chat model call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", domain.ErrModelInvocation, err)
	}
	return strings.TrimSpace(text), nil
}

// The model does not always respect the declared JSON types, so numeric
// fields tolerate string payloads.
func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(n)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func asInt(v interface{}) int {
	return int(asFloat(v))
}
