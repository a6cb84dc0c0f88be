package apimodels

type GenerateReportRequest struct {
	// Free-text feedback from the guide; required
	RawFeedback string `json:"rawFeedback"`

	CustomerName     string `json:"customerName,omitempty"`
	BookingReference string `json:"bookingReference,omitempty"`

	// Partner platform id: getyourguide, viator or generic
	Platform string `json:"platform,omitempty"`

	TourName     string `json:"tourName,omitempty"`
	GuideRemarks string `json:"guideRemarks,omitempty"`

	// Meal inclusion for the tour, e.g. "Lunch included"
	MealType string `json:"mealType,omitempty"`

	// Tone id: neutral, soft or firm
	Tone string `json:"tone,omitempty"`
}
