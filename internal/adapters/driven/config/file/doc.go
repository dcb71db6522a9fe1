// Package file provides file-backed configuration adapters.
//
// ConfigStore keeps application settings in ~/.llmprint/config.toml.
// PlanLoader reads generation plans written in YAML.
package file
