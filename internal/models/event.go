package models

import "time"

type Event struct {
	ID             ID        `json:"_id,omitempty" bson:"_id,omitempty"`
	Title          string    `json:"title" bson:"title"`
	Date           string    `json:"date" bson:"date"`
	Time           string    `json:"time" bson:"time"`
	EventType      string    `json:"eventType" bson:"eventType"`
	LocationIDs    []ID      `json:"locationIds" bson:"locationIds"`
	Description    string    `json:"description" bson:"description"`
	TargetAudience string    `json:"targetAudience" bson:"targetAudience"`
	MaxCapacity    int       `json:"maxCapacity" bson:"maxCapacity"`
	IsActive       bool      `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasLocation reports whether id is one of the event's locations.
func (e Event) HasLocation(id ID) bool {
	for _, l := range e.LocationIDs {
		if l.Equal(id) {
			return true
		}
	}
	return false
}
