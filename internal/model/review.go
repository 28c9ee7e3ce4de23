package model

import (
	"math"
	"strings"
	"time"
)

// Review is a visitor's rating of the restaurant.  A review is created
// unapproved and stays invisible to the public until an admin approves it.
// Rejection deletes the row, so there is no "rejected" flag.
//
// Fields:
//  ID        – identifier assigned by the store on creation.
//  Name      – author name.
//  Rating    – 0 to 5 in half-point steps.
//  Comment   – review text.
//  CreatedAt – server-assigned creation timestamp.
//  Approved  – true once an admin cleared the review for display.
type Review struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"timestamp"`
	Approved  bool      `json:"approved"`
}

// ReviewPatch lists the fields an update may change.  Nil fields are left
// untouched.
type ReviewPatch struct {
	Approved *bool
}

// ReviewInput is the public "leave a review" form.
type ReviewInput struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Validate checks the form and returns a pending review.
func (in ReviewInput) Validate() (Review, error) {
	var errs ValidationErrors
	if blank(in.Name) {
		errs.add("name", "name is required")
	}
	if blank(in.Comment) {
		errs.add("comment", "comment is required")
	}
	if math.IsNaN(in.Rating) || in.Rating < 0 || in.Rating > 5 || math.Mod(in.Rating*2, 1) != 0 {
		errs.add("rating", "rating must be between 0 and 5 in steps of 0.5")
	}
	if err := errs.err(); err != nil {
		return Review{}, err
	}
	return Review{
		Name:    strings.TrimSpace(in.Name),
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}, nil
}
