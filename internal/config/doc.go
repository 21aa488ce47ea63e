// Package config loads the shoplist client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shoplist/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. Blank fields fall back to their defaults
//  5. A .env file in the working directory is loaded, then the
//     SHOPLIST_API_URL and SHOPLIST_LOG_LEVEL variables override the file
//
// # TOML Format
//
//	api_url = "https://lists.example.com/api"
//	share_base_url = "https://lists.example.com"
//	device_store = "file"          # file, sqlite or memory
//	device_path = "~/.local/state/shoplist/device.toml"
//	quantity_debounce = "2s"
//	log_file = "~/.local/state/shoplist/shoplist.log"
//	log_level = "info"
//	theme = "Nightfox"
//
// Every field is optional. Paths are tilde-expanded and made absolute.
// When device_path is omitted it defaults per store kind.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, an
// unknown device_store and an unparsable quantity_debounce. A missing file
// is not an error.
package config
