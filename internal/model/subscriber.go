package model

import "time"

// Subscriber is a newsletter subscription record.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// ExpressionOfInterest is a record of someone asking to be contacted
// about a programme. It has no relational tie to donations.
type ExpressionOfInterest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Programme string    `json:"programme,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
