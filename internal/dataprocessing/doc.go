// Package dataprocessing turns scraped export files into one annotated table.
//
// # Stages
//
//  1. Loader: decodes each file (UTF-8 with optional BOM, UTF-16 fallback),
//     parses the header and rows, and normalizes Views, Message and
//     Source File into a typed domain.MessageRecord. Failures are returned
//     per file as a LoadResult, never raised.
//  2. Merge: concatenates loaded files, unions their headers and assigns
//     New Number when no source carries one.
//  3. Annotator: counts case-insensitive whole-word keyword occurrences in
//     every message, one column per keyword.
//  4. Summarizer helpers: keyword totals per category, per-file views,
//     skipped files.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	results := loader.LoadAll(ctx, inputs)
//	table, err := dataprocessing.Merge(dataprocessing.LoadedFiles(results))
//	if err != nil {
//	    return err // errors.ErrNoValidFiles when nothing loaded
//	}
//	annotator, _ := dataprocessing.NewAnnotator(categories, logger)
//	annotator.Annotate(table)
package dataprocessing
