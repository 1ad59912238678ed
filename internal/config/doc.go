// Package config loads the runtime configuration from a YAML (or JSON) file, an
// optional .env file and environment variables, in increasing precedence.
package config
