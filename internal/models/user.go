package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ============================================================================
// USERS & CROPS
// ============================================================================

type User struct {
	ID       string    `json:"id"`
	Phone    string    `json:"phone"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Location *string   `json:"location"`
	JoinedAt time.Time `json:"joinedAt"`
	Crops    []Crop    `json:"crops"`
}

// Crop is owned by exactly one User and is stored inline in its crops list.
// Healthy crops carry no disease fields; Infected crops always carry DiseaseName.
type Crop struct {
	ID                 string     `json:"id,omitempty"`
	Name               string     `json:"name"`
	Health             CropHealth `json:"health"`
	DiseaseName        *string    `json:"diseaseName"`
	PreventiveMeasures *string    `json:"preventiveMeasures"`
	Reason             *string    `json:"reason"`
	ImageURL           *string    `json:"imageUrl"`
}

// Patch is one optional field of a partial update. Set without a Value
// clears the stored field.
type Patch[T any] struct {
	Set   bool
	Value *T
}

func Value[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: &v}
}

func Null[T any]() Patch[T] {
	return Patch[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the payload, so an
// explicit null becomes a clearing patch while a missing key stays unset.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

// CropUpdate is merged field by field into an existing crop.
type CropUpdate struct {
	Name               Patch[string]     `json:"name"`
	Health             Patch[CropHealth] `json:"health"`
	DiseaseName        Patch[string]     `json:"diseaseName"`
	PreventiveMeasures Patch[string]     `json:"preventiveMeasures"`
	Reason             Patch[string]     `json:"reason"`
	ImageURL           Patch[string]     `json:"imageUrl"`
}

// Apply merges the set fields of u into c and reports whether anything was set.
func (u CropUpdate) Apply(c *Crop) bool {
	changed := false
	if u.Name.Set && u.Name.Value != nil {
		c.Name = *u.Name.Value
		changed = true
	}
	if u.Health.Set && u.Health.Value != nil {
		c.Health = *u.Health.Value
		changed = true
	}
	changed = applyNullable(&c.DiseaseName, u.DiseaseName) || changed
	changed = applyNullable(&c.PreventiveMeasures, u.PreventiveMeasures) || changed
	changed = applyNullable(&c.Reason, u.Reason) || changed
	changed = applyNullable(&c.ImageURL, u.ImageURL) || changed
	return changed
}

func applyNullable(dst **string, p Patch[string]) bool {
	if !p.Set {
		return false
	}
	if p.Value == nil {
		*dst = nil
		return true
	}
	v := *p.Value
	*dst = &v
	return true
}

// InfectedUpdate marks a crop as infected by the given disease.
func InfectedUpdate(disease, preventive, reason, imageRef string) CropUpdate {
	return CropUpdate{
		Health:             Value(CropInfected),
		DiseaseName:        Value(disease),
		PreventiveMeasures: Value(preventive),
		Reason:             Value(reason),
		ImageURL:           Value(imageRef),
	}
}

// HealthyUpdate resets a crop to healthy and clears every disease field.
func HealthyUpdate() CropUpdate {
	return CropUpdate{
		Health:             Value(CropHealthy),
		DiseaseName:        Null[string](),
		PreventiveMeasures: Null[string](),
		Reason:             Null[string](),
		ImageURL:           Null[string](),
	}
}

type RegisterUserRequest struct {
	Phone    string  `json:"phone" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Role     Role    `json:"role"`
	Location *string `json:"location"`
	Crops    []Crop  `json:"crops"`
}

type AddCropRequest struct {
	Name   string     `json:"name" binding:"required"`
	Health CropHealth `json:"health"`
}
