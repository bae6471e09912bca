// Package file provides the TOML-backed ConfigStore and the loader that
// turns its flattened keys into domain.Settings.
package file
