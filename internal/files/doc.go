// Package files discovers scraped export files in the input directory.
//
// Discovery lists the regular files of one directory whose names end in the
// configured suffix (".csv.csv" by default, the double extension produced by
// the scraper). Subdirectories are never searched.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	inputs, err := discovery.FindInputFiles("/data/Telegram_Scraped_Data", ".csv.csv")
package files
