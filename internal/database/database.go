package database

import (
	"context"
	"fmt"
	"log"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

// Connect opens the document store selected by STORE_DRIVER.
func Connect(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "mongo", "":
		s, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Printf("Connected to MongoDB database %s", cfg.MongoDatabase)
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		log.Printf("Opened SQLite document store at %s", cfg.DatabasePath)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
