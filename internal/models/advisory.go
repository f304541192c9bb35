package models

type Advisory struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	TargetRegion string   `json:"targetRegion"`
	Severity     Severity `json:"severity"`
	Date         string   `json:"date"`
}

type CreateAdvisoryRequest struct {
	Title        string   `json:"title" binding:"required"`
	Message      string   `json:"message" binding:"required"`
	TargetRegion string   `json:"targetRegion"`
	Severity     Severity `json:"severity"`
}
