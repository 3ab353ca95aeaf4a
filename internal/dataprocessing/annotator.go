package dataprocessing

import (
	"fmt"
	"log/slog"
	"regexp"
	"unicode"
	"unicode/utf8"

	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

// KeywordMatcher counts case-insensitive whole-word occurrences of a
// literal keyword.
type KeywordMatcher struct {
	keyword string
	pattern *regexp.Regexp
}

// NewKeywordMatcher compiles keyword as a literal pattern
func NewKeywordMatcher(keyword string) (*KeywordMatcher, error) {
	if keyword == "" {
		return nil, apperrors.NewAppValidationError("keyword must not be empty")
	}
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(keyword))
	if err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid keyword %q: %v", keyword, err))
	}
	return &KeywordMatcher{keyword: keyword, pattern: pattern}, nil
}

// Keyword returns the literal keyword
func (m *KeywordMatcher) Keyword() string {
	return m.keyword
}

// Count returns the number of non-overlapping matches in text that start
// and end on a word boundary. Letters of any script, digits and '_' are
// word characters, so a keyword inside a longer word is not counted.
func (m *KeywordMatcher) Count(text string) int {
	count, pos := 0, 0
	for pos < len(text) {
		loc := m.pattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if isWordBoundary(text, start) && isWordBoundary(text, end) {
			count++
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return count
}

// isWordBoundary reports whether word-ness changes at byte offset i
func isWordBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Annotator adds one count column per configured keyword
type Annotator struct {
	categories []domain.KeywordCategory
	matchers   []*KeywordMatcher
	logger     *slog.Logger
}

// NewAnnotator compiles matchers for every keyword of categories. A keyword
// listed in several categories gets a single column at its first position.
func NewAnnotator(categories []domain.KeywordCategory, logger *slog.Logger) (*Annotator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Annotator{categories: categories, logger: logger}
	seen := make(map[string]string)
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if first, dup := seen[kw]; dup {
				logger.Warn("Keyword listed in several categories, sharing one column",
					slog.String("keyword", kw),
					slog.String("first_category", first),
					slog.String("category", cat.Name))
				continue
			}
			m, err := NewKeywordMatcher(kw)
			if err != nil {
				return nil, err
			}
			seen[kw] = cat.Name
			a.matchers = append(a.matchers, m)
		}
	}

	return a, nil
}

// Columns returns the keyword columns in configuration order
func (a *Annotator) Columns() []string {
	cols := make([]string, len(a.matchers))
	for i, m := range a.matchers {
		cols[i] = m.keyword
	}
	return cols
}

// Categories returns the configured categories
func (a *Annotator) Categories() []domain.KeywordCategory {
	return a.categories
}

// CountMessage counts every keyword in message independently.
// Empty and defaulted messages count zero for all keywords.
func (a *Annotator) CountMessage(message string) map[string]int {
	counts := make(map[string]int, len(a.matchers))
	skip := message == "" || message == domain.DefaultMessage
	for _, m := range a.matchers {
		if skip {
			counts[m.keyword] = 0
			continue
		}
		counts[m.keyword] = m.Count(message)
	}
	return counts
}

// Annotate appends the keyword columns to table and fills each row's
// counts. Keyword columns already present, as in a re-loaded compiled
// file, keep their position and are recounted.
func (a *Annotator) Annotate(table *domain.CompiledTable) {
	for _, m := range a.matchers {
		if !table.HasColumn(m.keyword) {
			table.Columns = append(table.Columns, m.keyword)
		}
	}
	table.KeywordColumns = a.Columns()

	for i := range table.Records {
		rec := &table.Records[i]
		for _, m := range a.matchers {
			delete(rec.Extra, m.keyword)
		}
		rec.KeywordCounts = a.CountMessage(rec.Message)
	}
}
