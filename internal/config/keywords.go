package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

// DefaultCategories returns the built-in monitored keyword categories.
// A fresh copy is returned on every call.
func DefaultCategories() []domain.KeywordCategory {
	return []domain.KeywordCategory{
		{
			Name: "Industries_Businesses",
			Keywords: []string{
				"فیلترشکن", "اینفلوئنسر", "بلاگر", "کافه", "رستوران", "کلینیک", "شکن",
				"اینستاگرام", "سالن", "آرایشگاه", "آرایشگر", "سرقت", "قاچاق",
				"پیرایشگاه", "تشریفات", "صنفی", "دی جی", "تبلیغات", "باشگاه", "جیم", "بازار", "تبلیغات نامتعارف",
			},
		},
		{
			Name: "Enforcement_Terms",
			Keywords: []string{
				"پلمپ", "جریمه", "پلمب", "بست", "تعطیل", "برخورد", "حبس", "دستگیر", "هشدار",
				"اجرای", "مسدود", "محکومیت", "اخطاریه", "محروم", "مهروموم",
			},
		},
		{
			Name: "Morality_Terms",
			Keywords: []string{
				"هنجار", "کشف حجاب", "حجاب", "بی حجابی", "نامناسب",
				"استعمار", "متخلف", "عفاف", "مبتذل", "فرهنگ", "غرب",
			},
		},
		{
			Name: "Safety_Terms",
			Keywords: []string{
				"بهداشت", "سلامتی", "حفاظت", "امنیت", "جلوگیری", "پاکسازی", "خطر",
			},
		},
		{
			Name: "Demographic_Terms",
			Keywords: []string{
				"جوان", "دختر", "کودکان", "خانواده", "پسر", "پدر و مادر", "والدین",
				"مردان", "زنان",
			},
		},
		{
			Name: "Operative_Terms",
			Keywords: []string{
				"معاونت", "مبارزه", "رصد", "نظارت", "بررسی", "غیر مجاز", "مجوز", "قضایی",
				"طرح نور", "کشف", "رسیدگی قضایی", "مجاز",
			},
		},
	}
}

// keywordFile is the on-disk layout of a keywords file
type keywordFile struct {
	Categories []domain.KeywordCategory `yaml:"categories"`
}

// LoadKeywordFile reads keyword categories from a YAML file, keeping file order.
func LoadKeywordFile(path string) ([]domain.KeywordCategory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read keywords file %s", path), err)
	}

	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to parse keywords file %s", path), err)
	}
	if len(kf.Categories) == 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("keywords file %s defines no categories", path), nil)
	}

	return kf.Categories, nil
}

// ValidateCategories enforces category and keyword rules that struct tags
// cannot express: unique category names and keywords that do not shadow a
// reserved column. Repeated keywords across categories are allowed.
func ValidateCategories(categories []domain.KeywordCategory) error {
	if len(categories) == 0 {
		return apperrors.NewAppValidationError("at least one keyword category is required")
	}

	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat.Name == "" {
			return apperrors.NewAppValidationError("keyword category name must not be empty")
		}
		if seen[cat.Name] {
			return apperrors.NewAppValidationError(fmt.Sprintf("duplicate keyword category %q", cat.Name))
		}
		seen[cat.Name] = true

		for _, kw := range cat.Keywords {
			if kw == "" {
				return apperrors.NewAppValidationError(fmt.Sprintf("category %q contains an empty keyword", cat.Name))
			}
			if domain.IsReservedColumn(kw) {
				return apperrors.NewAppValidationError(fmt.Sprintf("keyword %q in category %q collides with a reserved column", kw, cat.Name))
			}
		}
	}
	return nil
}

// DuplicateKeywords returns keywords listed more than once, in first-seen order.
func DuplicateKeywords(categories []domain.KeywordCategory) []string {
	count := make(map[string]int)
	var order []string
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if count[kw] == 0 {
				order = append(order, kw)
			}
			count[kw]++
		}
	}

	var dups []string
	for _, kw := range order {
		if count[kw] > 1 {
			dups = append(dups, kw)
		}
	}
	return dups
}
