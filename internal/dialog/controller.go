package dialog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/saronqw/uninews-bot/internal/adapters/upstream"
	"github.com/saronqw/uninews-bot/internal/listing"
	"github.com/saronqw/uninews-bot/internal/trends"
	"github.com/saronqw/uninews-bot/pkg/logger"
	"github.com/saronqw/uninews-bot/pkg/models"
)

// maxPageButtonsPerRow keeps pagination keyboards inside Telegram's
// row width limit.
const maxPageButtonsPerRow = 8

// Gateway is the upstream the controller queries on demand.
type Gateway interface {
	FetchNews(ctx context.Context, scope models.Scope, interval models.Interval) ([]models.NewsRecord, error)
	FetchKeywords(ctx context.Context) ([]models.KeywordRecord, error)
}

// Controller is the finite-state dialog engine: given a user's
// session and one decoded event it picks the next screen, fires
// upstream queries where the transition calls for one, and mutates
// the session. One Handle call holds that user's session lock for the
// whole transition, so a user's events are strictly sequential while
// other users proceed in parallel.
type Controller struct {
	store     *Store
	gateway   Gateway
	chartsURL string
}

// NewController creates the dialog controller.
func NewController(store *Store, gateway Gateway, chartsURL string) *Controller {
	return &Controller{
		store:     store,
		gateway:   gateway,
		chartsURL: chartsURL,
	}
}

// Store exposes the session store (health stats, admin reset).
func (c *Controller) Store() *Store {
	return c.store
}

// Handle runs one transition for the user and returns the screen to
// show. It never returns an error: upstream failures become retry
// prompts and leave the session in its pre-query state.
func (c *Controller) Handle(ctx context.Context, userID int64, firstName string, event Event) Screen {
	var screen Screen
	c.store.Do(userID, func(session *Session) {
		screen = c.transition(ctx, session, firstName, event)
	})
	return screen
}

func (c *Controller) transition(ctx context.Context, session *Session, firstName string, event Event) Screen {
	// Menu is reachable from everywhere: both the MENU buttons on
	// listing screens and the /start and /menu commands land here.
	if event.Kind == EventOpenMenu {
		session.Screen = ScreenMenu
		return menuScreen(firstName)
	}

	switch session.Screen {
	case ScreenMenu:
		switch event.Kind {
		case EventOpenNews:
			session.Scope = models.Scope{}
			session.Interval = ""
			session.Screen = ScreenScopeChoice
			return scopeScreen()
		case EventOpenTrends:
			screen, err := c.trendsScreen(ctx)
			if err != nil {
				return upstreamErrorScreen(Button{Label: "MENU", Data: CallbackMenu})
			}
			session.Screen = ScreenTrendsListing
			return screen
		case EventOpenCharts:
			session.Screen = ScreenChartsListing
			return chartsScreen(c.chartsURL)
		}

	case ScreenScopeChoice:
		switch event.Kind {
		case EventScopeAll:
			session.Scope = models.AllUniversities()
			session.Screen = ScreenIntervalChoice
			return intervalScreen()
		case EventScopeNamed:
			session.Screen = ScreenUniversityTextEntry
			return universityEntryScreen()
		}

	case ScreenUniversityTextEntry:
		if event.Kind == EventUniversityText {
			session.Scope = models.NamedUniversity(event.Text)
			session.Screen = ScreenIntervalChoice
			return intervalScreen()
		}

	case ScreenIntervalChoice:
		switch event.Kind {
		case EventIntervalChosen:
			return c.runNewsQuery(ctx, session, event.Interval)
		case EventRetryAfterEmptyResult:
			// Back from the empty-result screen. The chosen scope
			// stays; only the interval gets re-asked.
			return intervalScreen()
		}

	case ScreenNewsListing:
		if event.Kind == EventPageSelected {
			return listingScreen(session, event.Page)
		}

	case ScreenTrendsListing, ScreenChartsListing:
		// Only the MENU button applies; handled above.
	}

	return notUnderstoodScreen()
}

// runNewsQuery fires the upstream query for the session's scope and
// the chosen interval, and advances to the listing only on a
// non-empty result. The session never ends up on a listing screen
// without backing cards.
func (c *Controller) runNewsQuery(ctx context.Context, session *Session, interval models.Interval) Screen {
	records, err := c.gateway.FetchNews(ctx, session.Scope, interval)
	if err != nil {
		if errors.Is(err, upstream.ErrMalformedPayload) {
			logger.Error("news response not decodable", zap.Error(err))
		} else {
			logger.Warn("news query failed", zap.Error(err))
		}
		// Session stays on interval choice; Back re-asks the
		// interval with the chosen scope intact.
		return upstreamErrorScreen(
			Button{Label: "Back", Data: CallbackRetry},
			Button{Label: "MENU", Data: CallbackMenu},
		)
	}

	if len(records) == 0 {
		// Defined transition, not a failure: stay on interval
		// choice and offer only the way back.
		session.Cards = nil
		session.LastQuery = nil
		return emptyResultScreen()
	}

	session.Interval = interval
	session.LastQuery = &Query{Scope: session.Scope, Interval: interval}
	session.Cards = listing.RenderCards(records)
	session.Page = 1
	session.Screen = ScreenNewsListing

	logger.Info("news listing opened",
		zap.String("scope", session.Scope.QueryValue()),
		zap.String("interval", string(interval)),
		zap.Int("items", len(records)),
	)

	return listingScreen(session, 1)
}

// listingScreen renders one page of the session's cards with the
// pagination keyboard. The page set is recomputed from the session on
// every navigation event; nothing is mutated incrementally.
func listingScreen(session *Session, page int) Screen {
	pages := listing.Paginate(session.Cards)
	page = pages.Clamp(page)
	session.Page = page

	return Screen{
		Text:               pages.PageText(page),
		Keyboard:           paginationKeyboard(page, pages.TotalPages()),
		Markdown:           true,
		DisableLinkPreview: true,
	}
}

func paginationKeyboard(current, totalPages int) [][]Button {
	buttons := make([]Button, 0, totalPages)
	for page := 1; page <= totalPages; page++ {
		label := fmt.Sprintf("%d", page)
		if page == current {
			label = fmt.Sprintf("·%d·", page)
		}
		buttons = append(buttons, Button{Label: label, Data: PageCallback(page)})
	}

	rows := chunk(buttons, maxPageButtonsPerRow)
	rows = append(rows, []Button{{Label: "MENU", Data: CallbackMenu}})
	return rows
}

func (c *Controller) trendsScreen(ctx context.Context) (Screen, error) {
	text, err := c.TrendsText(ctx)
	if err != nil {
		return Screen{}, err
	}

	return Screen{
		Text:     text,
		Keyboard: column(Button{Label: "MENU", Data: CallbackMenu}),
		Markdown: true,
	}, nil
}

// TrendsText fetches and formats the ranked trends block. Also used
// by the one-shot /trends command, which bypasses the state machine.
func (c *Controller) TrendsText(ctx context.Context) (string, error) {
	keywords, err := c.gateway.FetchKeywords(ctx)
	if err != nil {
		if errors.Is(err, upstream.ErrMalformedPayload) {
			logger.Error("keywords response not decodable", zap.Error(err))
		} else {
			logger.Warn("keywords query failed", zap.Error(err))
		}
		return "", err
	}

	return trends.RankAndFormat(keywords), nil
}

// ChartsText returns the static charts text. Also used by the
// one-shot /charts command.
func (c *Controller) ChartsText() string {
	return chartsText(c.chartsURL)
}

func menuScreen(firstName string) Screen {
	return Screen{
		Text: "Hello, " + firstName + "! 🤓\n" +
			"Are you interested in news of the leading universities in the world?\n" +
			"I can help you! 👻\n" +
			"Choose one of the proposed options:",
		Keyboard: column(
			Button{Label: "News 📚", Data: CallbackNews},
			Button{Label: "Trends 🏆", Data: CallbackTrends},
			Button{Label: "Charts 📈", Data: CallbackCharts},
		),
	}
}

func scopeScreen() Screen {
	return Screen{
		Text: "📚 What universities are you interested in? \n" +
			"Choose one of the proposed options:",
		Keyboard: column(
			Button{Label: "All universities 🕍", Data: CallbackScopeAll},
			Button{Label: "Type name university 📝", Data: CallbackScopeOne},
		),
	}
}

func universityEntryScreen() Screen {
	return Screen{Text: "Enter university name"}
}

func intervalScreen() Screen {
	return Screen{
		Text: "💬 How long do you want to see the news?\n" +
			"Choose one of the proposed options:",
		Keyboard: column(
			Button{Label: models.IntervalOneDay.Label(), Data: string(models.IntervalOneDay)},
			Button{Label: models.IntervalThreeDays.Label(), Data: string(models.IntervalThreeDays)},
			Button{Label: models.IntervalSevenDays.Label(), Data: string(models.IntervalSevenDays)},
		),
	}
}

func emptyResultScreen() Screen {
	return Screen{
		Text: "😿 There is no news in this interval.\n" +
			"Come back, please, and select another one.",
		Keyboard: column(Button{Label: "Back", Data: CallbackRetry}),
	}
}

// upstreamErrorScreen is the generic retry prompt. Extra buttons must
// be valid in the state the session stayed in.
func upstreamErrorScreen(buttons ...Button) Screen {
	return Screen{
		Text: "⚠️ The news service is temporarily unavailable.\n" +
			"Please try again in a moment.",
		Keyboard: column(buttons...),
	}
}

func chartsScreen(chartsURL string) Screen {
	return Screen{
		Text:     chartsText(chartsURL),
		Keyboard: column(Button{Label: "MENU", Data: CallbackMenu}),
		Markdown: true,
	}
}

func chartsText(chartsURL string) string {
	return "You have selected the \"Charts\" menu item.\n" +
		"This is a wonderful choice! 🦄\n" +
		"Already today you can be the first to get acquainted with the analytical charts of the news of the world's 🥳\n" +
		"Just click on the link below.\n" +
		"_Link:_ [show details](" + chartsURL + ") 📈"
}

func notUnderstoodScreen() Screen {
	return Screen{Text: "Sorry, I didn't understand that command."}
}
