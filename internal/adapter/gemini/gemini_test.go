package gemini

import (
	"errors"
	"testing"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/generative-ai-go/genai"
)

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestFirstTextConcatenatesParts(t *testing.T) {
	resp := textResponse(genai.Text(`{"make": "Toyota",`), genai.Text(` "model": "Corolla"}`))

	got, err := firstText(resp)
	if err != nil {
		t.Fatalf("firstText: %v", err)
	}
	want := `{"make": "Toyota", "model": "Corolla"}`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFirstTextSinglePart(t *testing.T) {
	got, err := firstText(textResponse(genai.Text("hello")))
	if err != nil {
		t.Fatalf("firstText: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestFirstTextEmptyResponses(t *testing.T) {
	if _, err := firstText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for no candidates")
	}
	if _, err := firstText(textResponse()); err == nil {
		t.Fatalf("expected error for empty parts")
	}
	if _, err := firstText(textResponse(genai.Blob{MIMEType: "image/png"})); err == nil {
		t.Fatalf("expected error for response with no text parts")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(t.Context(), "", "gemini-1.5-flash"); !errors.Is(err, domain.ErrAIConfiguration) {
		t.Fatalf("expected ErrAIConfiguration for blank key, got %v", err)
	}
}
