package listing

import "strings"

// PageSize is how many cards fit on one listing screen.
const PageSize = 3

// PageSet partitions an ordered card sequence into fixed-size pages.
// It is a pure view over the cards; navigation recomputes it from the
// session's card list, nothing is mutated in place.
type PageSet struct {
	cards      []Card
	pageSize   int
	totalPages int
}

// Paginate builds a page set over cards with the default page size.
func Paginate(cards []Card) PageSet {
	return PaginateSize(cards, PageSize)
}

// PaginateSize builds a page set with an explicit page size.
func PaginateSize(cards []Card, pageSize int) PageSet {
	totalPages := len(cards) / pageSize
	if len(cards)%pageSize != 0 {
		totalPages++
	}

	return PageSet{
		cards:      cards,
		pageSize:   pageSize,
		totalPages: totalPages,
	}
}

// TotalPages returns the number of pages. Zero only for an empty card
// list, which the dialog never shows as a listing.
func (p PageSet) TotalPages() int {
	return p.totalPages
}

// Clamp forces a requested page number into [1, totalPages].
func (p PageSet) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if page > p.totalPages {
		return p.totalPages
	}
	return page
}

// Page returns the cards of the given 1-based page. The last page may
// hold fewer than pageSize cards.
func (p PageSet) Page(page int) []Card {
	page = p.Clamp(page)

	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(p.cards) {
		end = len(p.cards)
	}

	return p.cards[start:end]
}

// PageText renders one page as the listing message body, cards
// separated by blank lines.
func (p PageSet) PageText(page int) string {
	cards := p.Page(page)

	blocks := make([]string, 0, len(cards))
	for _, card := range cards {
		blocks = append(blocks, card.Markdown())
	}

	return strings.Join(blocks, "\n\n")
}
