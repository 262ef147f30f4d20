// Package config provides centralized configuration management for the
// agent daemon: a JSON configuration file with sensible defaults, plus a
// YAML definition of the chain networks the daemon can attach to.
package config
