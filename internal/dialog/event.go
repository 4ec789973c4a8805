package dialog

import (
	"strconv"
	"strings"

	"github.com/saronqw/uninews-bot/pkg/models"
)

// Callback payload values carried by inline keyboard buttons. These
// are wire constants: changing them breaks buttons already attached
// to messages in users' chats.
const (
	CallbackNews       = "news"
	CallbackTrends     = "trends"
	CallbackCharts     = "charts"
	CallbackMenu       = "menu"
	CallbackScopeAll   = "all"
	CallbackScopeOne   = "one"
	CallbackRetry      = "retry_interval"
	callbackPagePrefix = "page#"
)

// EventKind tags a decoded user action.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventOpenMenu
	EventOpenNews
	EventOpenTrends
	EventOpenCharts
	EventScopeAll
	EventScopeNamed
	EventUniversityText
	EventIntervalChosen
	EventPageSelected
	// EventRetryAfterEmptyResult is the explicit "back" action of the
	// empty-result screen. It re-opens interval choice without
	// touching the previously chosen scope.
	EventRetryAfterEmptyResult
)

// Event is one user action after decoding at the transport boundary.
// Payload fields are only meaningful for their kind: Interval for
// EventIntervalChosen, Page for EventPageSelected, Text for
// EventUniversityText.
type Event struct {
	Kind     EventKind
	Interval models.Interval
	Page     int
	Text     string
}

// DecodeCallback maps a raw callback payload to a tagged event.
// Unknown payloads decode to EventUnknown; the controller answers
// those without changing state.
func DecodeCallback(data string) Event {
	switch data {
	case CallbackNews:
		return Event{Kind: EventOpenNews}
	case CallbackTrends:
		return Event{Kind: EventOpenTrends}
	case CallbackCharts:
		return Event{Kind: EventOpenCharts}
	case CallbackMenu:
		return Event{Kind: EventOpenMenu}
	case CallbackScopeAll:
		return Event{Kind: EventScopeAll}
	case CallbackScopeOne:
		return Event{Kind: EventScopeNamed}
	case CallbackRetry:
		return Event{Kind: EventRetryAfterEmptyResult}
	}

	if interval := models.Interval(data); interval.Valid() {
		return Event{Kind: EventIntervalChosen, Interval: interval}
	}

	if raw, ok := strings.CutPrefix(data, callbackPagePrefix); ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Event{Kind: EventUnknown}
		}
		return Event{Kind: EventPageSelected, Page: page}
	}

	return Event{Kind: EventUnknown}
}

// TextEvent wraps a free-text message as an event. The controller
// only consumes it while awaiting a university name.
func TextEvent(text string) Event {
	return Event{Kind: EventUniversityText, Text: text}
}

// PageCallback builds the callback payload for a page button.
func PageCallback(page int) string {
	return callbackPagePrefix + strconv.Itoa(page)
}
