package blank

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

const (
	minPlaceholder = 3
	maxPlaceholder = 20
)

var fileBannerRe = regexp.MustCompile(`// ={40,}\n// FILE: (.+?)\n// ={40,}`)

var fileBannerReplacement = `<span class="file-separator">// ` + strings.Repeat("=", 44) +
	"\n// FILE: ${1}\n// " + strings.Repeat("=", 44) + `</span>`

// Placeholder returns the underscore run that replaces text
func Placeholder(text string) string {
	n := len(text)
	if n < minPlaceholder {
		n = minPlaceholder
	}
	if n > maxPlaceholder {
		n = maxPlaceholder
	}
	return strings.Repeat("_", n)
}

// Render replaces each selected span of source with a placeholder and
// returns the rewritten text plus the answer key in left-to-right order.
//
// Spans are spliced from the highest offset down so that lower offsets stay
// valid. A span whose text no longer matches is skipped and logged; the
// remaining placeholders and answers stay aligned.
func Render(source string, selected []Candidate, logger *slog.Logger) (string, []domain.Blank) {
	if logger == nil {
		logger = slog.Default()
	}

	ordered := make([]Candidate, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	code := source
	blanks := make([]domain.Blank, 0, len(ordered))

	for _, c := range ordered {
		if c.Start < 0 || c.End > len(code) || c.Start > c.End || code[c.Start:c.End] != c.Text {
			logger.Debug("skipping blank",
				"error", fmt.Errorf("%w: expected %q at %d-%d", domain.ErrBlankIntegrity, c.Text, c.Start, c.End),
				"category", c.Category,
			)
			continue
		}

		code = code[:c.Start] + Placeholder(c.Text) + code[c.End:]
		blanks = append([]domain.Blank{{Answer: c.Text}}, blanks...)
	}

	return StyleFileBanners(code), blanks
}

// StyleFileBanners wraps "// FILE: name" banner comments in a styling span.
// It never touches placeholders.
func StyleFileBanners(code string) string {
	return fileBannerRe.ReplaceAllString(code, fileBannerReplacement)
}
