package models

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location is a crawl site. Capacity is the nominal seat count shown in the
// seed data; MaxCapacity is the manual override that admission and display
// actually honour.
type Location struct {
	ID          ID           `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string       `json:"name" bson:"name"`
	Address     string       `json:"address" bson:"address"`
	Borough     string       `json:"borough" bson:"borough"`
	Capacity    int          `json:"capacity" bson:"capacity"`
	MaxCapacity *int         `json:"maxCapacity,omitempty" bson:"maxCapacity,omitempty"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// EffectiveCapacity returns the override when set, otherwise def.
func (l Location) EffectiveCapacity(def int) int {
	if l.MaxCapacity != nil {
		return *l.MaxCapacity
	}
	return def
}
