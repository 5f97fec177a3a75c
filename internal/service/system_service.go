package service

import (
	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/database"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sqlx.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sqlx.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version
func (s *SystemService) CheckVersion() string {
	return version.Version
}

// SchemaVersion returns the applied migration version.
func (s *SystemService) SchemaVersion() (int64, error) {
	return database.SchemaVersion(s.db)
}
