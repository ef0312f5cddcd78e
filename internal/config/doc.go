// Package config loads, normalizes, and validates epub2md configuration.
//
// Configuration is read from TOML at ~/.config/epub2md/config.toml, falling
// back to ./epub2md.toml. A missing file is not an error: Default values are
// used. Command-line flags override whatever is loaded here.
package config
