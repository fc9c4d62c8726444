// Package config loads application configuration with viper from an optional
// YAML file and PARAMSTORE_* environment variables, and validates it.
package config
