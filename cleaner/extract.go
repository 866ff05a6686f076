package cleaner

import (
	"log/slog"
	nurl "net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const (
	// maxContentLength caps extracted text so a single page cannot blow the
	// downstream prompt budget.
	maxContentLength = 25000

	// truncationMarker is appended whenever the cap was applied.
	truncationMarker = "\n\n[Content truncated]"

	// minCandidateLength is the minimum text length for a main-content
	// candidate to be accepted, guarding against empty shells.
	minCandidateLength = 200
)

// noiseSelector matches elements that never carry page content.
const noiseSelector = "script, style, noscript, nav, footer, header, aside, iframe, form, " +
	".ad, .ads, .advertisement, .sidebar, .social-share, .cookie-banner, .comments"

// mainSelectors is the prioritized list of likely main-content containers.
// The first candidate whose text exceeds minCandidateLength wins.
var mainSelectors = []string{
	"[role=main]",
	"main",
	"article",
	"#main-content",
	"#content",
	".main-content",
	".post-content",
	".article-content",
	".entry-content",
	".content",
}

// Extract isolates the primary text of a page and bounds its size.
//
// It tries, in order: the readability algorithm, a prioritized search of
// common main-content containers, the full body text, and finally the raw
// input. Structured parsing failures degrade to a crude tag-stripping pass;
// extraction never fails, only gets cruder.
//
// The second return value reports whether the size cap was applied.
func Extract(markup string, sourceURL string) (string, bool) {
	if text, ok := extractReadability(markup, sourceURL); ok {
		return Cap(normalizeWhitespace(text))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		slog.Warn("extract: markup parse failed, stripping tags", "url", sourceURL, "error", err)
		return Cap(normalizeWhitespace(stripTags(markup)))
	}

	doc.Find(noiseSelector).Remove()

	for _, sel := range mainSelectors {
		candidate := doc.Find(sel).First()
		if candidate.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(candidate.Text())
		if len(text) > minCandidateLength {
			return Cap(normalizeWhitespace(text))
		}
	}

	if body := doc.Find("body"); body.Length() > 0 {
		if text := strings.TrimSpace(body.Text()); text != "" {
			return Cap(normalizeWhitespace(text))
		}
	}

	return Cap(normalizeWhitespace(doc.Text()))
}

// extractReadability runs go-readability and reports whether its output is
// substantial enough to trust.
func extractReadability(markup string, sourceURL string) (string, bool) {
	base, err := nurl.Parse(sourceURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(markup), base)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) < minCandidateLength {
		return "", false
	}
	return text, true
}

var (
	spaceRunRe = regexp.MustCompile(`[ \t\r\f]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// normalizeWhitespace collapses whitespace runs to single spaces and runs of
// blank lines to one blank line, trimming each line.
func normalizeWhitespace(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Cap enforces the extraction size limit, appending the truncation marker when
// the cap fires.
func Cap(s string) (string, bool) {
	if len(s) <= maxContentLength {
		return s, false
	}
	cut := maxContentLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker, true
}

// stripTags is the last-resort extraction path: a tokenizer walk that drops
// all markup and script/style bodies.
func stripTags(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var buf strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
