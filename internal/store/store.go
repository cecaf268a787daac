// Package store defines the document-store contract the registration core is
// written against. Backends live in internal/database.
package store

import (
	"context"
	"errors"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

// Collection names.
const (
	Events             = "events"
	Locations          = "eventLocations"
	Registrations      = "registrations"
	EventRegistrations = "eventRegistrations"
)

// IDField is the key every document is stored under.
const IDField = "_id"

var (
	ErrNotFound    = errors.New("document not found")
	ErrUnavailable = errors.New("document store unavailable")
)

// Filter matches documents by field equality. A value of type In matches any
// of its members.
type Filter map[string]any

// In is set membership, the equivalent of Mongo's $in.
type In []any

// InOf builds an In from any slice of values.
func InOf[T any](vals []T) In {
	in := make(In, 0, len(vals))
	for _, v := range vals {
		in = append(in, v)
	}
	return in
}

// Store is a schema-on-read document store.
//
// Find decodes into a pointer to a slice; FindOne into a pointer to a struct
// and returns ErrNotFound when nothing matches. Failures reaching the backend
// wrap ErrUnavailable.
type Store interface {
	Find(ctx context.Context, collection string, filter Filter, out any) error
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	InsertOne(ctx context.Context, collection string, doc any) (models.ID, error)
	InsertMany(ctx context.Context, collection string, docs []any) ([]models.ID, error)
	UpdateOne(ctx context.Context, collection string, filter Filter, set map[string]any) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
	CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error)
	Close(ctx context.Context) error
}
