// Package config loads the CLI configuration: a JSON file overlaid with
// LITEQUEUE_* environment variables, both optional on top of built-in
// defaults.
package config
