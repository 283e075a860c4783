// Package database provides the data access layer for the service.
//
// The layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── spreads/         # Resource and craft spread persistence and queries
//	└── audit/           # Import run audit trail
//
// Each sub-package provides a Repository built on the shared connection:
//
//	db, err := database.NewDatabase("./spreadhub.db")
//
//	spreadRepo := spreads.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// Repositories hold no state beyond the connection and are safe for
// concurrent use.
package database
