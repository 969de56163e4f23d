// Package config loads, normalizes, and validates lovelyhashcat configuration.
//
// Configuration is TOML, resolved from an explicit --config path, then
// ~/.config/lovelyhashcat/config.toml, then ./lovelyhashcat.toml, falling back
// to defaults. Paths are expanded (including ~) and the hashcat executable may
// come from the HASHCAT_PATH environment variable. PotfilePath applies
// hashcat's own lookup of a potfile beside the executable.
package config
