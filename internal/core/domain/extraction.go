package domain

// ExtractedCarAttributes is the structured result of running a car photo
// through the vision model. It is transient: consumers either pre-fill an
// add-listing form from it or turn a subset into search filters.
type ExtractedCarAttributes struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Color        string  `json:"color"`
	BodyType     string  `json:"bodyType"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

// ExtractionRequiredFields is the fixed set the model response must carry.
// A response missing any of them is rejected outright, no matter how high
// the reported confidence is.
var ExtractionRequiredFields = []string{
	"make",
	"model",
	"year",
	"color",
	"bodyType",
	"price",
	"mileage",
	"fuelType",
	"transmission",
	"description",
	"confidence",
}
