package models

import "time"

// MedicalProfile is the fixed point-scale code assigned to a trainee.
type MedicalProfile string

const (
	MedicalProfile97 MedicalProfile = "97"
	MedicalProfile82 MedicalProfile = "82"
	MedicalProfile72 MedicalProfile = "72"
	MedicalProfile64 MedicalProfile = "64"
	MedicalProfile45 MedicalProfile = "45"
	MedicalProfile25 MedicalProfile = "25"
	MedicalProfile21 MedicalProfile = "21"
)

// Valid returns true when the profile is a supported code.
func (p MedicalProfile) Valid() bool {
	switch p {
	case MedicalProfile97, MedicalProfile82, MedicalProfile72, MedicalProfile64,
		MedicalProfile45, MedicalProfile25, MedicalProfile21:
		return true
	default:
		return false
	}
}

// Gender uses the upstream wire values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// MedicalApproval is the gym-entry clearance attached to a trainee.
type MedicalApproval struct {
	Approved       bool       `json:"approved"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// ValidAt reports whether the approval is in force at the given instant.
// An absent expiration date means the approval never expires.
func (a MedicalApproval) ValidAt(now time.Time) bool {
	if !a.Approved {
		return false
	}
	if a.ExpirationDate == nil {
		return true
	}
	return !a.ExpirationDate.Before(now)
}

// Trainee represents a gym member registered at a base. Field names mirror the
// upstream backend's JSON (Mongo-style _id, camelCase).
type Trainee struct {
	ID              string          `json:"_id"`
	PersonalID      string          `json:"personalId"`
	FullName        string          `json:"fullName"`
	Gender          Gender          `json:"gender"`
	BirthDate       *time.Time      `json:"birthDate,omitempty"`
	MedicalProfile  MedicalProfile  `json:"medicalProfile"`
	BaseID          string          `json:"baseId"`
	DepartmentID    string          `json:"departmentId"`
	SubDepartmentID string          `json:"subDepartmentId,omitempty"`
	MedicalApproval MedicalApproval `json:"medicalApproval"`
}

// Age returns the trainee's whole-year age at the given instant, or -1 when the
// birth date is unknown.
func (t Trainee) Age(now time.Time) int {
	if t.BirthDate == nil {
		return -1
	}
	birth := *t.BirthDate
	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
