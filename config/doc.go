// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, overridden from the environment
// (a .env file is read first when present) and validated using struct tags.
// The package supports several named upstreams and allows selection by name.
package config
