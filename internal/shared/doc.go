// Package shared holds helpers used by more than one package.
//
// testutil provides a capturing slog handler and builders for Telegram
// export fixtures. It is imported only from _test.go files.
package shared
