package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Document is one schema-on-read record. Fields are queried with json_extract
// so the same filters work as against Mongo.
type Document struct {
	Seq        uint   `gorm:"primaryKey;autoIncrement"`
	Collection string `gorm:"not null;uniqueIndex:idx_collection_doc"`
	DocID      string `gorm:"not null;uniqueIndex:idx_collection_doc"`
	Body       string `gorm:"not null"`
	CreatedAt  time.Time
}

// SQLStore keeps documents in a single SQLite table. Used for local runs and
// tests.
type SQLStore struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", store.ErrUnavailable, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// :memory: databases live per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) scope(ctx context.Context, tx *gorm.DB, collection string, filter store.Filter) *gorm.DB {
	q := tx.WithContext(ctx).Model(&Document{}).Where("collection = ?", collection)

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := filter[k]
		if k == store.IDField {
			q = q.Where("doc_id IN ?", idStrings(v))
			continue
		}
		path := `$."` + strings.ReplaceAll(k, `"`, ``) + `"`
		if in, ok := v.(store.In); ok {
			vals := make([]any, 0, len(in))
			for _, m := range in {
				vals = append(vals, plain(m))
			}
			q = q.Where("json_extract(body, ?) IN ?", path, vals)
			continue
		}
		q = q.Where("json_extract(body, ?) = ?", path, plain(v))
	}
	return q
}

func (s *SQLStore) Find(ctx context.Context, collection string, filter store.Filter, out any) error {
	var docs []Document
	if err := s.scope(ctx, s.db, collection, filter).Order("seq").Find(&docs).Error; err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	bodies := make([]string, 0, len(docs))
	for _, d := range docs {
		bodies = append(bodies, d.Body)
	}
	if err := json.Unmarshal([]byte("["+strings.Join(bodies, ",")+"]"), out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *SQLStore) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	var docs []Document
	if err := s.scope(ctx, s.db, collection, filter).Order("seq").Limit(1).Find(&docs).Error; err != nil {
		return fmt.Errorf("find one %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return store.ErrNotFound
	}
	if err := json.Unmarshal([]byte(docs[0].Body), out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *SQLStore) InsertOne(ctx context.Context, collection string, doc any) (models.ID, error) {
	ids, err := s.InsertMany(ctx, collection, []any{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *SQLStore) InsertMany(ctx context.Context, collection string, docs []any) ([]models.ID, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	rows := make([]Document, 0, len(docs))
	ids := make([]models.ID, 0, len(docs))
	for _, doc := range docs {
		fields, err := toFields(doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", collection, err)
		}
		id := models.IDOf(fields[store.IDField])
		if id.IsZero() {
			id = models.ID(uuid.New().String())
		}
		fields[store.IDField] = id.String()
		body, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", collection, err)
		}
		rows = append(rows, Document{Collection: collection, DocID: id.String(), Body: string(body)})
		ids = append(ids, id)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	return ids, nil
}

func (s *SQLStore) UpdateOne(ctx context.Context, collection string, filter store.Filter, set map[string]any) (int64, error) {
	var matched int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var docs []Document
		if err := s.scope(ctx, tx, collection, filter).Order("seq").Limit(1).Find(&docs).Error; err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		matched = 1

		var fields map[string]any
		if err := json.Unmarshal([]byte(docs[0].Body), &fields); err != nil {
			return err
		}
		patch, err := toFields(set)
		if err != nil {
			return err
		}
		for k, v := range patch {
			fields[k] = v
		}
		body, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return tx.Model(&Document{}).Where("seq = ?", docs[0].Seq).Update("body", string(body)).Error
	})
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", collection, err)
	}
	return matched, nil
}

func (s *SQLStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	res := s.scope(ctx, s.db, collection, filter).Delete(&Document{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SQLStore) CountDocuments(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	var n int64
	if err := s.scope(ctx, s.db, collection, filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toFields round-trips a document through JSON so struct tags decide the
// stored field names.
func toFields(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("document must encode to an object")
	}
	return fields, nil
}

func idStrings(v any) []string {
	if in, ok := v.(store.In); ok {
		out := make([]string, 0, len(in))
		for _, m := range in {
			out = append(out, models.IDOf(m).String())
		}
		return out
	}
	return []string{models.IDOf(v).String()}
}

// plain reduces named types (models.ID, models.DayLabel, ...) to the builtin
// kinds the sqlite driver binds.
func plain(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return fmt.Sprint(v)
	}
}
