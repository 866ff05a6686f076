package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// NewMarkdownConverter creates a reusable, goroutine-safe Converter for the
// "markdown" output format:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea and HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin with minimal cell padding: keeps tabular structure intact
//     for the AI pipeline without column-alignment padding.
func NewMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts markup to Markdown. The domain parameter resolves
// relative links into absolute ones so the output is self-contained.
func ToMarkdown(conv *converter.Converter, markup string, domain string) (string, error) {
	return conv.ConvertString(markup, converter.WithDomain(domain))
}
