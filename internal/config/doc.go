// Package config handles configuration loading for the copilot bot.
//
// Configuration is a TOML file with ${VAR} environment variable
// expansion. A .env file in the working directory is loaded before
// expansion, so local development secrets never need to live in the
// config file itself:
//
//	[discord]
//	token = "${DISCORD_BOT_TOKEN}"
//	client_id = "${DISCORD_CLIENT_ID}"
//
//	[pieces]
//	base_url = "${PIECES_CLIENT_BASE_URL}"
//
//	[github]
//	token = "${GITHUB_PERSONAL_TOKEN}"
//	owner = "pieces-app"
//	repo = "support"
//	refresh_on_ready = true
//
//	[logging]
//	level = "info"
package config
