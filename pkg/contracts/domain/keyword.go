package domain

import "strings"

// KeywordCategory is a named group of monitored terms used for report grouping.
type KeywordCategory struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Keywords []string `json:"keywords" yaml:"keywords" validate:"required,min=1,dive,required"`
}

// DisplayName returns the category name with underscores shown as spaces
func (c KeywordCategory) DisplayName() string {
	return strings.ReplaceAll(c.Name, "_", " ")
}

// KeywordTotal is the grand total of one keyword across all rows
type KeywordTotal struct {
	Keyword string `json:"keyword"`
	Total   int64  `json:"total"`
}

// CategoryTotals groups keyword totals under their category
type CategoryTotals struct {
	Category string         `json:"category"`
	Keywords []KeywordTotal `json:"keywords"`
}

// DisplayName returns the category name with underscores shown as spaces
func (c CategoryTotals) DisplayName() string {
	return strings.ReplaceAll(c.Category, "_", " ")
}
