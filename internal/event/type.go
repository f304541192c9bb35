package event

import "time"

const CropCareQueue string = "cropcare_events"

type CropCareEvent struct {
	ID         string         `json:"id"`
	EventType  EventType      `json:"event_type"`
	Phone      string         `json:"phone,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Additional map[string]any `json:"additional"`
}

type EventType string

const (
	DiseaseDetected    EventType = "disease_detected"
	AdvisoryPublished  EventType = "advisory_published"
	CropHealthRestored EventType = "crop_health_restored"
)
