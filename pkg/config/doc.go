// Package config loads SDK runtime settings from environment variables.
//
// Configuration structs declare `env` tags; Load parses the process
// environment into them, after loading a .env file once per process when
// one exists.
//
// # Usage
//
//	var cfg config.SDK
//	if err := config.Load(&cfg); err != nil {
//		// a required variable is missing or malformed
//	}
//
// Load works with any tagged struct, so packages can declare their own
// settings (see userprofile.Config) and share the loader.
package config
