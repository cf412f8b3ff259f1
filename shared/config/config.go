// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	PlanStore          string
	DatabasePath       string
	FirestoreProjectID string
	ContentServiceURL  string
	ContentAPIKey      string
	UsersServiceURL    string
	TablesPath         string
	CORSOrigins        []string
}

// Load reads a .env file when present and builds the config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Failed to load .env file: %v (this is normal for Cloud Run)", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:               valueOr(getenv("PORT"), "8082"),
		Environment:        valueOr(getenv("ENVIRONMENT"), "production"),
		LogLevel:           valueOr(getenv("LOG_LEVEL"), "info"),
		PlanStore:          strings.ToLower(valueOr(getenv("PLAN_STORE"), StoreMemory)),
		DatabasePath:       valueOr(getenv("DATABASE_PATH"), "plans.db"),
		FirestoreProjectID: getenv("FIRESTORE_PROJECT_ID"),
		ContentServiceURL:  getenv("CONTENT_SERVICE_URL"),
		ContentAPIKey:      getenv("CONTENT_API_KEY"),
		UsersServiceURL:    getenv("USERS_SERVICE_URL"),
		TablesPath:         getenv("TABLES_PATH"),
		CORSOrigins:        splitList(valueOr(getenv("CORS_ORIGINS"), "*")),
	}

	switch cfg.PlanStore {
	case StoreMemory, StoreSQLite:
	case StoreFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required when PLAN_STORE=firestore")
		}
	default:
		return nil, fmt.Errorf("unknown PLAN_STORE %q", cfg.PlanStore)
	}

	return cfg, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
