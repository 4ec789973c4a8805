package trends

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/saronqw/uninews-bot/pkg/models"
)

const (
	// scoreScale turns the coef*count product into a readable integer.
	scoreScale = 1500

	// rowWidth is the fixed display width of rank+tag+padding; the
	// score right-aligns against it with a one-space gutter.
	rowWidth = 30

	header = "🤓 IT'S TRENDS:\n`"
	footer = "`"
)

// RankedEntry is one keyword after sorting, with its display score.
type RankedEntry struct {
	Rank  int
	Tag   string
	Score int
}

// Rank sorts keywords by coef*count descending and assigns 1-based
// ranks. The sort key is the full-precision product, not the rounded
// display score, so ties in display never reorder ranks. Equal
// products keep their fetch order.
func Rank(keywords []models.KeywordRecord) []RankedEntry {
	sorted := make([]models.KeywordRecord, len(keywords))
	copy(sorted, keywords)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})

	entries := make([]RankedEntry, 0, len(sorted))
	for i, k := range sorted {
		entries = append(entries, RankedEntry{
			Rank:  i + 1,
			Tag:   k.Tag,
			Score: int(math.Round(k.Score() * scoreScale)),
		})
	}

	return entries
}

// Format renders ranked entries as the monospace trends block.
// Empty input yields just the header and footer.
func Format(entries []RankedEntry) string {
	var b strings.Builder
	b.WriteString(header)

	for _, entry := range entries {
		b.WriteString(formatRow(entry))
		b.WriteByte('\n')
	}

	b.WriteString(footer)
	return b.String()
}

// RankAndFormat is the one-call form used by the dialog controller.
func RankAndFormat(keywords []models.KeywordRecord) string {
	return Format(Rank(keywords))
}

// formatRow lays out one entry: "%2d. <tag>" padded so the score ends
// at a fixed column. Overlong tags are cut with exactly three
// characters reserved for the ellipsis so the row still fits rowWidth.
func formatRow(entry RankedEntry) string {
	score := strconv.Itoa(entry.Score)
	scoreLen := len([]rune(score))

	prefix := []rune(strconv.Itoa(entry.Rank) + ". " + entry.Tag)
	if entry.Rank < 10 {
		prefix = append([]rune{' '}, prefix...)
	}

	if len(prefix)+scoreLen > rowWidth {
		keep := rowWidth - scoreLen - 3
		if keep < 0 {
			keep = 0
		}
		if keep > len(prefix) {
			keep = len(prefix)
		}
		prefix = append(prefix[:keep], []rune("...")...)
	}

	padding := rowWidth - len(prefix) - scoreLen + 1
	if padding < 0 {
		padding = 0
	}

	return string(prefix) + strings.Repeat(" ", padding) + score
}
