package listing

import (
	"fmt"
	"strings"

	"github.com/saronqw/uninews-bot/pkg/models"
)

// snippetTokens is how many description words survive into the card.
const snippetTokens = 18

// Card is the display-ready form of one news item, rendered as a
// Markdown block for the chat transport.
type Card struct {
	Headline string
	Snippet  string
	Link     string
}

// RenderCard converts a news record into a card. The snippet keeps the
// first 18 whitespace-delimited words of the description, re-joined
// with single spaces. The "..." suffix is always appended, even when
// nothing was cut (preserved source behavior).
func RenderCard(record models.NewsRecord) Card {
	words := strings.Fields(record.Description)
	if len(words) > snippetTokens {
		words = words[:snippetTokens]
	}

	return Card{
		Headline: record.Title,
		Snippet:  strings.Join(words, " ") + "...",
		Link:     record.Link,
	}
}

// RenderCards converts a result set wholesale, keeping fetch order.
func RenderCards(records []models.NewsRecord) []Card {
	cards := make([]Card, 0, len(records))
	for _, record := range records {
		cards = append(cards, RenderCard(record))
	}
	return cards
}

// Markdown renders the card as a Telegram Markdown block.
func (c Card) Markdown() string {
	return fmt.Sprintf("🔸 *%s*\n%s\n_Link:_ [show details](%s)", c.Headline, c.Snippet, c.Link)
}
