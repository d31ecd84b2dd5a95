package config

import "os"

func loadProductionConfig(cfg *Config) {
	dataDir := os.Getenv("DATA_DIRECTORY")
	if dataDir == "" {
		dataDir = "/data"
	}
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	cfg.DatabaseFilePath = dataDir + "/hearth.sqlite"
	cfg.SettingsFilePath = configDir + "/settings.yaml"
}
