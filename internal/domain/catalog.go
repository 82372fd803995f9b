package domain

type Destination struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Planet         string `json:"planet"`
	Price          int64  `json:"price"`
	Currency       string `json:"currency"`
	TravelDuration string `json:"travelDuration"`
	Distance       string `json:"distance"`
	Gravity        string `json:"gravity"`
	Description    string `json:"description,omitempty"`
}

type Accommodation struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	PricePerDay      int64  `json:"pricePerDay"`
	Currency         string `json:"currency"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description,omitempty"`
}

type Craft struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
}

type ExtraID string

const (
	ExtraSpacewalk    ExtraID = "spacewalk"
	ExtraVRTraining   ExtraID = "vr-training"
	ExtraPhotoPackage ExtraID = "photo-package"
)

type Extra struct {
	ID    ExtraID `json:"id"`
	Name  string  `json:"name"`
	Price int64   `json:"price"`
}

// PriceBreakdown is derived from the current selections and never edited by hand.
type PriceBreakdown struct {
	Base          int64 `json:"base"`
	Accommodation int64 `json:"accommodation"`
	Extras        int64 `json:"extras"`
	Total         int64 `json:"total"`
}
