package models

import "time"

// Report is a disease detection event. Location is a snapshot of the
// reporting farmer's location taken when the report was written.
type Report struct {
	ID                 string    `json:"id"`
	Disease            string    `json:"disease"`
	Confidence         float64   `json:"confidence"`
	Location           string    `json:"location"`
	Image              string    `json:"image"`
	Reason             string    `json:"reason"`
	PreventiveMeasures string    `json:"preventiveMeasures"`
	Timestamp          time.Time `json:"timestamp"`
}

type OfficerStats struct {
	TotalReports  int            `json:"totalReports"`
	DiseaseCounts map[string]int `json:"diseaseCounts"`
	RecentReports []Report       `json:"recentReports"`
}
