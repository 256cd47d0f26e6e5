package constants

// DefaultEnvPath is the default path to the .env file
const DefaultEnvPath = "./.env"

// DefaultConfigPath is the default path to the config.toml file
const DefaultConfigPath = "./config.toml"

// DefaultDownloadDir is where downloaded media is written and served from
const DefaultDownloadDir = "./downloads"
