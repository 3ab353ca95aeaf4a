// Package operations orchestrates one compile run.
//
// A Compiler executes its stages strictly in order:
//
//	discover -> load -> merge -> annotate -> summarize -> write
//
// Each stage has a StepState that records its status, timing and a few
// metadata values, and runs inside its own span. Files that fail to load
// are reported and skipped. When no file loads, Run returns
// errors.ErrNoValidFiles and nothing is written.
package operations
