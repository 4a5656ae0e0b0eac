// Package config loads the runtime configuration of the circulation engine: environment
// variables (optionally from a .env file), Postgres connection settings and the
// circulation policy file.
package config
