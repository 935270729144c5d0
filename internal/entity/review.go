package entity

import "time"

// Review is a row of the /reviews resource. At most one review exists per
// (BookID, UserID) pair.
type Review struct {
	ID        int       `json:"id"`
	BookID    int       `json:"bookId"`
	UserID    int       `json:"userId"`
	Rating    int       `json:"rating"`
	Text      *string   `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
