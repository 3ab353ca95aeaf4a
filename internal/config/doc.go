// Package config provides configuration management for the compiler.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (applied by cmd/compiler)
//	2. Environment variables
//	3. YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TGCOMPILE_<SECTION>_<KEY>:
//
//	TGCOMPILE_INPUT_DIR=/data/Telegram_Scraped_Data
//	TGCOMPILE_INPUT_SUFFIX=.csv.csv
//	TGCOMPILE_OUTPUT_XLSX=true
//	TGCOMPILE_KEYWORDS_FILE=keywords.yaml
//	TGCOMPILE_LOGGING_LEVEL=debug
//	TGCOMPILE_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/tgcompile.prom
//
// # Keywords
//
// The six monitored categories are built in (see DefaultCategories). A YAML
// keywords file replaces them entirely:
//
//	categories:
//	  - name: Safety_Terms
//	    keywords: [بهداشت, امنیت]
package config
