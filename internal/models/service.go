package models

import "time"

// Service is an offering shown on the public site (interior design, legal help, ...).
type Service struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	ShortDescription string    `json:"shortDescription" db:"short_description"`
	Description      string    `json:"description" db:"description"`
	Image            string    `json:"image" db:"image"`
	Features         []string  `json:"features" db:"features"`
	Amenities        []string  `json:"amenities" db:"amenities"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// ServiceRequest is the multipart service form. Features and amenities arrive comma separated.
type ServiceRequest struct {
	Title            string `form:"title" json:"title" binding:"required"`
	ShortDescription string `form:"shortDescription" json:"shortDescription" binding:"required"`
	Description      string `form:"description" json:"description" binding:"required"`
	Features         string `form:"features" json:"features"`
	Amenities        string `form:"amenities" json:"amenities"`
}
