// Package config loads Skipper's TOML configuration.
//
// # Configuration Discovery
//
// Load reads the given path, or ~/.config/skipper/config.toml when the path
// is empty. A missing file is not an error: defaults are returned so Skipper
// works against a local printer bridge without any setup.
//
// # TOML Format
//
//	printer_api = "127.0.0.1:8989"
//	log_file = "~/.local/state/skipper/skipper.log"
//	poll_seconds = 2
//	metadata_retry_seconds = 15
//	pick_cache_size = 8
//	sequence_id = "0"
//
// Every key is optional. Blank strings and non-positive numbers keep the
// default. Tilde expansion is performed for the config path and log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files (other
// than os.ErrNotExist) and TOML parse errors.
package config
