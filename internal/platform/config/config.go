package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Mirror drivers.
const (
	MirrorSQLite = "sqlite"
	MirrorFile   = "file"
	MirrorMemory = "memory"
)

// Profile store backends of the companion API.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Web configures cmd/server.
type Web struct {
	Port         string        `env:"PORT"          envDefault:"8080"`
	APIURL       string        `env:"API_URL,required,notEmpty"`
	APITimeout   time.Duration `env:"API_TIMEOUT"   envDefault:"10s"`
	MirrorDriver string        `env:"MIRROR_DRIVER" envDefault:"sqlite"`
	MirrorPath   string        `env:"MIRROR_PATH"   envDefault:"profile-mirror.db"`
}

// API configures cmd/profileapi.
type API struct {
	Port        string `env:"PORT"                           envDefault:"8081"`
	Store       string `env:"PROFILE_STORE"                  envDefault:"firestore"`
	ProjectID   string `env:"FIREBASE_PROJECT_ID"`
	Credentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Environment string `env:"APP_ENVIRONMENT"                envDefault:"development"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadWeb parses and checks the web client configuration.
func LoadWeb() (Web, error) {
	var cfg Web
	if err := ParseEnv(&cfg); err != nil {
		return Web{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Web{}, err
	}
	return cfg, nil
}

// Validate reports settings env tags cannot express.
func (c Web) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	switch c.MirrorDriver {
	case MirrorSQLite, MirrorFile:
		if c.MirrorPath == "" {
			return fmt.Errorf("MIRROR_PATH is required for the %s mirror", c.MirrorDriver)
		}
	case MirrorMemory:
	default:
		return fmt.Errorf("MIRROR_DRIVER must be one of sqlite, file, memory, got %q", c.MirrorDriver)
	}
	return nil
}

// LoadAPI parses and checks the companion API configuration.
func LoadAPI() (API, error) {
	var cfg API
	if err := ParseEnv(&cfg); err != nil {
		return API{}, err
	}
	if err := cfg.Validate(); err != nil {
		return API{}, err
	}
	return cfg, nil
}

// Validate reports settings env tags cannot express.
func (c API) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreFirestore:
		if c.ProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	default:
		return fmt.Errorf("PROFILE_STORE must be firestore or memory, got %q", c.Store)
	}
	return nil
}
