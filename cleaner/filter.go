package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent applies CSS-selector-based content filtering to raw markup
// before extraction.
//
// Processing order:
//  1. Remove elements matching excludeTags (if any).
//  2. Keep only elements matching includeTags (if any).
//
// Returns the filtered markup. If both slices are empty, returns the input
// unchanged.
func FilterContent(markup string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return markup
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}

	if len(includeTags) > 0 {
		combined := strings.Join(includeTags, ", ")
		matches := doc.Find(combined)
		if matches.Length() > 0 {
			var buf strings.Builder
			matches.Each(func(_ int, s *goquery.Selection) {
				h, err := goquery.OuterHtml(s)
				if err == nil {
					buf.WriteString(h)
				}
			})
			return buf.String()
		}
		// No include match: fall through with the exclude-filtered markup.
	}

	result, err := doc.Html()
	if err != nil {
		return markup
	}
	return result
}
