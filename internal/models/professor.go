package models

import "fmt"

// Professor is a catalog record mirroring the metadata stored alongside each
// review vector in the index.
type Professor struct {
	ID      string  `json:"id"`      // Professor name, also the vector id
	Subject string  `json:"subject"` // Department or course subject
	Stars   float64 `json:"stars"`   // Average rating, 0-5
	Review  string  `json:"review"`  // Representative review text
}

// Validate checks a catalog record before it is stored.
func (p Professor) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("professor id is required")
	}
	if p.Subject == "" {
		return fmt.Errorf("professor subject is required")
	}
	if p.Stars < 0 || p.Stars > 5 {
		return fmt.Errorf("stars must be between 0 and 5, got %g", p.Stars)
	}
	return nil
}

// ProfessorListResponse is the paged catalog listing payload.
type ProfessorListResponse struct {
	Professors []Professor `json:"professors"`
	Total      int         `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
