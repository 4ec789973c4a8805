package dialog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/saronqw/uninews-bot/internal/adapters/upstream"
	"github.com/saronqw/uninews-bot/pkg/logger"
	"github.com/saronqw/uninews-bot/pkg/models"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type newsCall struct {
	scope    models.Scope
	interval models.Interval
}

type fakeGateway struct {
	news        []models.NewsRecord
	newsErr     error
	keywords    []models.KeywordRecord
	keywordsErr error
	newsCalls   []newsCall
}

func (f *fakeGateway) FetchNews(_ context.Context, scope models.Scope, interval models.Interval) ([]models.NewsRecord, error) {
	f.newsCalls = append(f.newsCalls, newsCall{scope: scope, interval: interval})
	return f.news, f.newsErr
}

func (f *fakeGateway) FetchKeywords(_ context.Context) ([]models.KeywordRecord, error) {
	return f.keywords, f.keywordsErr
}

func makeNews(n int) []models.NewsRecord {
	records := make([]models.NewsRecord, n)
	for i := range records {
		records[i] = models.NewsRecord{
			Title:       fmt.Sprintf("item-%d", i+1),
			Description: "short description of the item",
			Link:        fmt.Sprintf("https://news.example/%d", i+1),
		}
	}
	return records
}

func newTestController(gateway Gateway) *Controller {
	return NewController(NewStore(), gateway, "charts.example/analyzer/")
}

const userID = int64(100)

func handle(c *Controller, event Event) Screen {
	return c.Handle(context.Background(), userID, "Alice", event)
}

func screenOf(c *Controller) ScreenID {
	return c.Store().Snapshot(userID).Screen
}

func TestController_MenuScreen(t *testing.T) {
	c := newTestController(&fakeGateway{})

	screen := handle(c, Event{Kind: EventOpenMenu})

	if !strings.Contains(screen.Text, "Hello, Alice!") {
		t.Errorf("menu must greet the user by first name: %q", screen.Text)
	}
	if len(screen.Keyboard) != 3 {
		t.Errorf("menu offers %d rows, want 3", len(screen.Keyboard))
	}
	if screenOf(c) != ScreenMenu {
		t.Errorf("state = %v, want menu", screenOf(c))
	}
}

func TestController_NewsFlow_AllUniversities(t *testing.T) {
	gateway := &fakeGateway{news: makeNews(2)}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})

	screen := handle(c, Event{Kind: EventOpenNews})
	if screenOf(c) != ScreenScopeChoice {
		t.Fatalf("state = %v, want scope choice", screenOf(c))
	}
	if !strings.Contains(screen.Text, "What universities") {
		t.Errorf("scope prompt = %q", screen.Text)
	}

	screen = handle(c, Event{Kind: EventScopeAll})
	if screenOf(c) != ScreenIntervalChoice {
		t.Fatalf("state = %v, want interval choice", screenOf(c))
	}
	if len(screen.Keyboard) != 3 {
		t.Errorf("interval prompt offers %d rows, want 3", len(screen.Keyboard))
	}

	screen = handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})
	if screenOf(c) != ScreenNewsListing {
		t.Fatalf("state = %v, want news listing", screenOf(c))
	}
	if got := strings.Count(screen.Text, "🔸"); got != 2 {
		t.Errorf("listing shows %d cards, want 2", got)
	}
	if !screen.DisableLinkPreview {
		t.Error("listing must disable link previews")
	}

	if len(gateway.newsCalls) != 1 {
		t.Fatalf("gateway called %d times, want 1", len(gateway.newsCalls))
	}
	call := gateway.newsCalls[0]
	if !call.scope.IsAll() || call.interval != models.IntervalOneDay {
		t.Errorf("query = %+v, want (all, one_day)", call)
	}
}

func TestController_NewsFlow_NamedUniversity(t *testing.T) {
	gateway := &fakeGateway{news: makeNews(1)}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})

	screen := handle(c, Event{Kind: EventScopeNamed})
	if screen.Text != "Enter university name" {
		t.Errorf("entry prompt = %q", screen.Text)
	}
	if screenOf(c) != ScreenUniversityTextEntry {
		t.Fatalf("state = %v, want text entry", screenOf(c))
	}

	handle(c, TextEvent("MIT"))
	if screenOf(c) != ScreenIntervalChoice {
		t.Fatalf("state = %v, want interval choice", screenOf(c))
	}

	handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalThreeDays})

	if len(gateway.newsCalls) != 1 {
		t.Fatalf("gateway called %d times, want exactly 1", len(gateway.newsCalls))
	}
	call := gateway.newsCalls[0]
	if call.scope.Name != "MIT" || call.interval != models.IntervalThreeDays {
		t.Errorf("query = %+v, want (MIT, three_days)", call)
	}
}

func TestController_SelectingNewsResetsStaleScope(t *testing.T) {
	gateway := &fakeGateway{news: makeNews(1)}
	c := newTestController(gateway)

	// Complete a flow with a named scope first.
	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})
	handle(c, Event{Kind: EventScopeNamed})
	handle(c, TextEvent("MIT"))
	handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	// Going back through the menu into News must clear the old scope.
	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})

	session := c.Store().Snapshot(userID)
	if !session.Scope.IsZero() {
		t.Errorf("scope = %+v, want cleared after re-entering News", session.Scope)
	}
	if session.Interval != "" {
		t.Errorf("interval = %q, want cleared", session.Interval)
	}
}

func TestController_EmptyResultOffersBack(t *testing.T) {
	gateway := &fakeGateway{news: nil}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})
	handle(c, Event{Kind: EventScopeAll})

	screen := handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	if !strings.Contains(screen.Text, "no news in this interval") {
		t.Errorf("empty-result text = %q", screen.Text)
	}
	if len(screen.Keyboard) != 1 || screen.Keyboard[0][0].Data != CallbackRetry {
		t.Errorf("empty-result screen must offer only Back: %+v", screen.Keyboard)
	}
	if screenOf(c) != ScreenIntervalChoice {
		t.Fatalf("state = %v, must never reach the listing on empty result", screenOf(c))
	}

	// Back re-opens interval choice with the scope intact.
	screen = handle(c, Event{Kind: EventRetryAfterEmptyResult})
	if !strings.Contains(screen.Text, "How long do you want to see the news?") {
		t.Errorf("retry screen = %q", screen.Text)
	}

	gateway.news = makeNews(1)
	handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalSevenDays})

	if len(gateway.newsCalls) != 2 {
		t.Fatalf("gateway called %d times, want 2", len(gateway.newsCalls))
	}
	second := gateway.newsCalls[1]
	if !second.scope.IsAll() {
		t.Errorf("retry lost the chosen scope: %+v", second)
	}
	if screenOf(c) != ScreenNewsListing {
		t.Errorf("state = %v, want news listing after successful retry", screenOf(c))
	}
}

func TestController_UpstreamErrorKeepsState(t *testing.T) {
	gateway := &fakeGateway{newsErr: upstream.ErrUnavailable}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})
	handle(c, Event{Kind: EventScopeAll})

	screen := handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	if !strings.Contains(screen.Text, "temporarily unavailable") {
		t.Errorf("error text = %q", screen.Text)
	}
	if screenOf(c) != ScreenIntervalChoice {
		t.Errorf("state = %v, want unchanged interval choice", screenOf(c))
	}
	if scope := c.Store().Snapshot(userID).Scope; !scope.IsAll() {
		t.Errorf("scope = %+v, must survive the failed query", scope)
	}
}

func TestController_Pagination(t *testing.T) {
	gateway := &fakeGateway{news: makeNews(7)}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	handle(c, Event{Kind: EventOpenNews})
	handle(c, Event{Kind: EventScopeAll})
	first := handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	if got := strings.Count(first.Text, "🔸"); got != 3 {
		t.Fatalf("page 1 shows %d cards, want 3", got)
	}

	last := handle(c, Event{Kind: EventPageSelected, Page: 3})
	if got := strings.Count(last.Text, "🔸"); got != 1 {
		t.Errorf("page 3 shows %d cards, want 1", got)
	}
	if !strings.Contains(last.Text, "item-7") {
		t.Errorf("page 3 must hold the last card: %q", last.Text)
	}

	// Out-of-range requests clamp instead of failing.
	clamped := handle(c, Event{Kind: EventPageSelected, Page: 99})
	if !strings.Contains(clamped.Text, "item-7") {
		t.Errorf("page 99 must clamp to the last page: %q", clamped.Text)
	}
	if got := c.Store().Snapshot(userID).Page; got != 3 {
		t.Errorf("session page = %d, want 3", got)
	}

	// Current page is marked in the keyboard.
	var marked string
	for _, row := range clamped.Keyboard {
		for _, button := range row {
			if strings.HasPrefix(button.Label, "·") {
				marked = button.Label
			}
		}
	}
	if marked != "·3·" {
		t.Errorf("marked page button = %q, want ·3·", marked)
	}
}

func TestController_Trends(t *testing.T) {
	gateway := &fakeGateway{keywords: []models.KeywordRecord{
		{Tag: "COVID19", Coef: 0.2, Count: 10},
	}}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	screen := handle(c, Event{Kind: EventOpenTrends})

	if !strings.Contains(screen.Text, "IT'S TRENDS") {
		t.Errorf("trends screen = %q", screen.Text)
	}
	if !strings.Contains(screen.Text, "COVID19") {
		t.Errorf("trends screen missing keyword: %q", screen.Text)
	}
	if screenOf(c) != ScreenTrendsListing {
		t.Fatalf("state = %v, want trends listing", screenOf(c))
	}

	handle(c, Event{Kind: EventOpenMenu})
	if screenOf(c) != ScreenMenu {
		t.Errorf("state = %v, want menu after MENU button", screenOf(c))
	}
}

func TestController_TrendsUpstreamError(t *testing.T) {
	gateway := &fakeGateway{keywordsErr: upstream.ErrUnavailable}
	c := newTestController(gateway)

	handle(c, Event{Kind: EventOpenMenu})
	screen := handle(c, Event{Kind: EventOpenTrends})

	if !strings.Contains(screen.Text, "temporarily unavailable") {
		t.Errorf("error text = %q", screen.Text)
	}
	if screenOf(c) != ScreenMenu {
		t.Errorf("state = %v, want unchanged menu", screenOf(c))
	}
}

func TestController_Charts(t *testing.T) {
	c := newTestController(&fakeGateway{})

	handle(c, Event{Kind: EventOpenMenu})
	screen := handle(c, Event{Kind: EventOpenCharts})

	if !strings.Contains(screen.Text, "charts.example/analyzer/") {
		t.Errorf("charts screen missing link: %q", screen.Text)
	}
	if screenOf(c) != ScreenChartsListing {
		t.Errorf("state = %v, want charts listing", screenOf(c))
	}
}

func TestController_UnrecognizedEventKeepsState(t *testing.T) {
	c := newTestController(&fakeGateway{})

	handle(c, Event{Kind: EventOpenMenu})

	// Interval selection makes no sense on the menu screen.
	screen := handle(c, Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	if !strings.Contains(screen.Text, "didn't understand") {
		t.Errorf("unknown event answer = %q", screen.Text)
	}
	if screenOf(c) != ScreenMenu {
		t.Errorf("state = %v, want unchanged menu", screenOf(c))
	}
}

func TestController_UsersAreIndependent(t *testing.T) {
	gateway := &fakeGateway{news: makeNews(1)}
	c := newTestController(gateway)

	ctx := context.Background()
	c.Handle(ctx, 1, "Alice", Event{Kind: EventOpenMenu})
	c.Handle(ctx, 1, "Alice", Event{Kind: EventOpenNews})
	c.Handle(ctx, 1, "Alice", Event{Kind: EventScopeNamed})
	c.Handle(ctx, 1, "Alice", TextEvent("MIT"))

	c.Handle(ctx, 2, "Bob", Event{Kind: EventOpenMenu})
	c.Handle(ctx, 2, "Bob", Event{Kind: EventOpenNews})
	c.Handle(ctx, 2, "Bob", Event{Kind: EventScopeAll})
	c.Handle(ctx, 2, "Bob", Event{Kind: EventIntervalChosen, Interval: models.IntervalOneDay})

	if len(gateway.newsCalls) != 1 {
		t.Fatalf("gateway called %d times, want 1", len(gateway.newsCalls))
	}
	if !gateway.newsCalls[0].scope.IsAll() {
		t.Errorf("Bob's query used Alice's scope: %+v", gateway.newsCalls[0])
	}

	alice := c.Store().Snapshot(1)
	if alice.Screen != ScreenIntervalChoice || alice.Scope.Name != "MIT" {
		t.Errorf("Alice's session disturbed: %+v", alice)
	}
}
