// Package session owns the class session entity and its lifecycle rules.
package session

import (
	"time"

	"github.com/google/uuid"
)

// ClassSession is one scheduled class occurrence with a fixed venue. The
// schedule fields are advisory; only IsActive gates attendance, and it is
// flipped exclusively by an owner edit, never by the clock.
type ClassSession struct {
	ID           uuid.UUID `json:"id"`
	LecturerID   uuid.UUID `json:"lecturerId"`
	CourseCode   string    `json:"courseCode"`
	CourseTitle  string    `json:"courseTitle"`
	Venue        string    `json:"venue"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ClassDate    string    `json:"classDate"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	SessionToken string    `json:"sessionToken"`
	IsActive     bool      `json:"isActive"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateInput carries the required fields for a new session. Coordinates are
// the venue's, picked by the owner; the note is optional.
type CreateInput struct {
	CourseCode  string
	CourseTitle string
	Venue       string
	Latitude    float64
	Longitude   float64
	ClassDate   string
	StartTime   string
	EndTime     string
	Note        string
}

// Patch is a partial update; nil fields are left untouched. ID, token and
// owner are immutable and deliberately absent.
type Patch struct {
	CourseCode  *string
	CourseTitle *string
	Venue       *string
	Latitude    *float64
	Longitude   *float64
	ClassDate   *string
	StartTime   *string
	EndTime     *string
	Note        *string
	IsActive    *bool
}

func (p Patch) apply(s *ClassSession) {
	if p.CourseCode != nil {
		s.CourseCode = *p.CourseCode
	}
	if p.CourseTitle != nil {
		s.CourseTitle = *p.CourseTitle
	}
	if p.Venue != nil {
		s.Venue = *p.Venue
	}
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
	if p.ClassDate != nil {
		s.ClassDate = *p.ClassDate
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Note != nil {
		s.Note = *p.Note
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}
