package money

import (
	"strconv"
	"strings"
)

// Locale selects digit grouping and currency symbol.
type Locale string

const (
	// LocaleIN groups as 12,34,56,789 (lakh/crore).
	LocaleIN Locale = "en-IN"
	// LocaleUS groups in thousands.
	LocaleUS Locale = "en-US"
)

// ParseLocale maps a locale tag to a supported Locale, defaulting to LocaleIN.
func ParseLocale(tag string) Locale {
	if strings.EqualFold(tag, string(LocaleUS)) {
		return LocaleUS
	}
	return LocaleIN
}

// Format renders m with the locale's grouping, e.g. ₹5,00,000 or ₹1,234.50.
// Paise are printed only when non-zero.
func Format(m Money, locale Locale) string {
	paise := int64(m)
	neg := paise < 0
	if neg {
		paise = -paise
	}
	rupees := strconv.FormatInt(paise/PaisePerRupee, 10)
	frac := paise % PaisePerRupee

	var grouped string
	if locale == LocaleUS {
		grouped = group(rupees, 3, 3)
	} else {
		grouped = group(rupees, 3, 2)
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(grouped)
	if frac != 0 {
		b.WriteByte('.')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}

// group inserts commas: the last `first` digits form one group, the rest are split every `rest`.
func group(digits string, first, rest int) string {
	if len(digits) <= first {
		return digits
	}
	head, tail := digits[:len(digits)-first], digits[len(digits)-first:]
	var parts []string
	for len(head) > rest {
		parts = append([]string{head[len(head)-rest:]}, parts...)
		head = head[:len(head)-rest]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}
