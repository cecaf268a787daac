package models

import "time"

// Registration is the older flat record, keyed by day label and a location
// id stored as a string.
type Registration struct {
	ID                   ID        `json:"_id,omitempty" bson:"_id,omitempty"`
	Email                string    `json:"email" bson:"email"`
	FirstName            string    `json:"firstName" bson:"firstName"`
	LastName             string    `json:"lastName" bson:"lastName"`
	School               string    `json:"school" bson:"school"`
	Phone                string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CrawlDate            DayLabel  `json:"crawlDate" bson:"crawlDate"`
	CrawlLocation        string    `json:"crawlLocation" bson:"crawlLocation"`
	CrawlLocationName    string    `json:"crawlLocationName" bson:"crawlLocationName"`
	CrawlLocationAddress string    `json:"crawlLocationAddress" bson:"crawlLocationAddress"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
}

func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

type RegistrationStatus string

const (
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusWaitlist  RegistrationStatus = "waitlist"
	StatusCancelled RegistrationStatus = "cancelled"
)

// EventRegistration is the newer record keyed by event and location ids. Only
// confirmed entries hold a seat.
type EventRegistration struct {
	ID               ID                 `json:"_id,omitempty" bson:"_id,omitempty"`
	Email            string             `json:"email" bson:"email"`
	FirstName        string             `json:"firstName" bson:"firstName"`
	LastName         string             `json:"lastName" bson:"lastName"`
	School           string             `json:"school" bson:"school"`
	EventID          ID                 `json:"eventId" bson:"eventId"`
	LocationID       ID                 `json:"locationId" bson:"locationId"`
	RegistrationDate time.Time          `json:"registrationDate" bson:"registrationDate"`
	Status           RegistrationStatus `json:"status" bson:"status"`
}
