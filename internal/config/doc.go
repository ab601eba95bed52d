// Package config handles configuration loading for the kirppis server.
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${KIRPPIS_JWT_SECRET}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "24h"
//
// # Configuration Sections
//
//	environment: "development"   # or "production"
//
//	server:
//	  http_addr: "0.0.0.0:5000"
//	  cors_origins:
//	    - "http://localhost:5173"
//
//	database:
//	  path: "/var/lib/kirppis/kirppis.db"
//
//	auth:
//	  jwt_secret: "${KIRPPIS_JWT_SECRET}"
//	  token_ttl: "24h"
//
//	seed:
//	  admin_email: "admin@example.com"
//	  admin_password: "${KIRPPIS_ADMIN_PASSWORD}"
//	  categories: ["Electronics", "Books"]
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates that the HTTP address, database path, and JWT secret
// are present, and that the JWT secret is not the shipped development
// default when environment is "production".
package config
