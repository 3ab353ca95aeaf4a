package config

import "tgcompile/pkg/contracts"

// Application constants
const (
	AppName    = "tgcompile"
	AppVersion = contracts.Version

	// EnvPrefix namespaces environment overrides, e.g. TGCOMPILE_INPUT_DIR
	EnvPrefix = "TGCOMPILE"

	DefaultInputDir       = "Telegram_Scraped_Data"
	DefaultInputSuffix    = ".csv.csv"
	DefaultOutputFileName = "Telegram_Data_Compiled.csv"
	DefaultLogFile        = "logs/tgcompile.log"

	// Console report caps
	DefaultFileViewsLimit = 30
	DefaultSkippedLimit   = 10
)
