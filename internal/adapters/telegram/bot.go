package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/saronqw/uninews-bot/internal/adapters/config"
	"github.com/saronqw/uninews-bot/internal/dialog"
	"github.com/saronqw/uninews-bot/pkg/logger"
)

// Bot is the chat transport: it long-polls Telegram, decodes updates
// into dialog events once at this boundary, and renders the screens
// the controller returns. All conversation logic lives in the
// controller; this adapter only moves messages.
type Bot struct {
	api           *tgbotapi.BotAPI
	controller    *dialog.Controller
	admins        map[string]bool
	updateTimeout int
}

// NewBot creates new Telegram bot
func NewBot(cfg *config.TelegramConfig, controller *dialog.Controller) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	admins := make(map[string]bool, len(cfg.AdminUsernames))
	for _, username := range cfg.AdminUsernames {
		admins[username] = true
	}

	logger.Info("telegram bot initialized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{
		api:           api,
		controller:    controller,
		admins:        admins,
		updateTimeout: cfg.UpdateTimeout,
	}, nil
}

// Start starts listening for updates
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.api.GetUpdatesChan(u)

	logger.Info("telegram bot started, listening for updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			// Each update gets its own goroutine; the session store
			// serializes events per user.
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleText(ctx, update.Message)
	}
}

// handleCallback processes inline keyboard taps. The screen replaces
// the message the button was attached to.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Stop the client-side spinner regardless of outcome.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logger.Warn("failed to answer callback query", zap.Error(err))
	}

	if cq.Message == nil {
		return
	}

	event := dialog.DecodeCallback(cq.Data)

	logger.Debug("callback received",
		zap.String("data", cq.Data),
		zap.Int64("user_id", cq.From.ID),
	)

	screen := b.controller.Handle(ctx, cq.From.ID, cq.From.FirstName, event)
	b.edit(cq.Message.Chat.ID, cq.Message.MessageID, screen)
}

// handleText processes free-text messages (university name entry).
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	screen := b.controller.Handle(ctx, message.From.ID, message.From.FirstName, dialog.TextEvent(message.Text))
	b.send(message.Chat.ID, screen)
}

// handleCommand processes slash commands.
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	logger.Info("received telegram command",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
		zap.String("username", message.From.UserName),
	)

	switch command {
	case "start", "menu":
		screen := b.controller.Handle(ctx, message.From.ID, message.From.FirstName, dialog.Event{Kind: dialog.EventOpenMenu})
		b.send(message.Chat.ID, screen)

	case "help":
		b.send(message.Chat.ID, dialog.Screen{Text: "Help!"})

	case "trends":
		// One-shot trends block without entering the listing state.
		text, err := b.controller.TrendsText(ctx)
		if err != nil {
			b.send(message.Chat.ID, dialog.Screen{Text: "⚠️ The news service is temporarily unavailable.\nPlease try again in a moment."})
			return
		}
		b.send(message.Chat.ID, dialog.Screen{Text: text, Markdown: true})

	case "charts":
		b.send(message.Chat.ID, dialog.Screen{Text: b.controller.ChartsText(), Markdown: true})

	case "restart":
		b.handleRestart(message)

	default:
		b.send(message.Chat.ID, dialog.Screen{Text: "Sorry, I didn't understand that command."})
	}
}

// handleRestart resets every session. Allowed only for the configured
// admin usernames.
func (b *Bot) handleRestart(message *tgbotapi.Message) {
	if !b.admins[message.From.UserName] {
		logger.Warn("restart denied",
			zap.String("username", message.From.UserName),
			zap.Int64("user_id", message.From.ID),
		)
		b.send(message.Chat.ID, dialog.Screen{Text: "Sorry, I didn't understand that command."})
		return
	}

	b.send(message.Chat.ID, dialog.Screen{Text: "Bot is restarting..."})

	b.controller.Store().Reset()
	logger.Info("all sessions reset", zap.String("by", message.From.UserName))

	b.send(message.Chat.ID, dialog.Screen{Text: "Done!"})
}

// send delivers a screen as a new message.
func (b *Bot) send(chatID int64, screen dialog.Screen) {
	msg := tgbotapi.NewMessage(chatID, screen.Text)
	if screen.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.DisableWebPagePreview = screen.DisableLinkPreview
	if markup, ok := keyboard(screen); ok {
		msg.ReplyMarkup = markup
	}

	if _, err := b.api.Send(msg); err != nil {
		logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// edit replaces the message a callback button was attached to.
func (b *Bot) edit(chatID int64, messageID int, screen dialog.Screen) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, screen.Text)
	if screen.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.DisableWebPagePreview = screen.DisableLinkPreview
	if markup, ok := keyboard(screen); ok {
		msg.ReplyMarkup = &markup
	}

	if _, err := b.api.Send(msg); err != nil {
		logger.Error("failed to edit message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// keyboard converts screen buttons to an inline keyboard markup.
func keyboard(screen dialog.Screen) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(screen.Keyboard) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(screen.Keyboard))
	for _, row := range screen.Keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
		}
		rows = append(rows, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// Close closes bot connection
func (b *Bot) Close() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
		logger.Info("telegram bot stopped")
	}
}
