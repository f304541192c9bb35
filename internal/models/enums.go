package models

type Role string

const (
	RoleFarmer  Role = "farmer"
	RoleOfficer Role = "officer"
)

func (r Role) IsValid() bool {
	return r == RoleFarmer || r == RoleOfficer
}

type CropHealth string

const (
	CropHealthy  CropHealth = "Healthy"
	CropInfected CropHealth = "Infected"
)

type VerdictStatus string

const (
	VerdictHealthy   VerdictStatus = "Healthy"
	VerdictUnhealthy VerdictStatus = "Unhealthy"
	VerdictUnknown   VerdictStatus = "Unknown"
)

type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

const (
	DefaultTargetRegion = "All"
	UnknownLocation     = "Unknown"
)
