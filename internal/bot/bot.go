// Package bot wires the Telegram transport to the poll wizard, the pick
// flows and the admin roster.
package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shortrest/tavernbot/internal/logger"
	"github.com/shortrest/tavernbot/internal/models"
	"github.com/shortrest/tavernbot/internal/store"
)

// sender is the slice of the Telegram API the handlers need. Tests swap in a
// recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api      sender
	poller   *tgbotapi.BotAPI
	polls    *store.PollStore
	admins   *store.AdminStore
	sessions *sessionTracker
}

type Config struct {
	Token string
}

func New(cfg Config, polls *store.PollStore, admins *store.AdminStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Out().Printf("Authorized on account %s", api.Self.UserName)

	b := newBot(api, polls, admins)
	b.poller = api
	return b, nil
}

func newBot(api sender, polls *store.PollStore, admins *store.AdminStore) *Bot {
	return &Bot{
		api:      api,
		polls:    polls,
		admins:   admins,
		sessions: newSessionTracker(),
	}
}

// Run consumes updates until StopReceivingUpdates is called.
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.poller.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.route(update.Message)
	}

	return nil
}

func (b *Bot) Stop() {
	if b.poller != nil {
		b.poller.StopReceivingUpdates()
	}
}

// route classifies one inbound message: admin gate, cancel interception,
// commands, then flow continuation. Cancel has to run before the per-state
// dispatch so it works in every state of every flow.
func (b *Bot) route(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.admit(msg) {
		return
	}

	private := msg.Chat.IsPrivate()

	if private && strings.EqualFold(strings.TrimSpace(msg.Text), cancelWord) {
		b.handleCancel(msg)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	if private {
		if sess := b.sessions.get(msg.From.ID); sess != nil {
			b.continueFlow(msg, sess)
			return
		}
	}

	logger.Debug().Printf("Ignored message (%s) (%d)", msg.Text, msg.Chat.ID)
}

// admit applies the authorization gate. A sender is admitted when either
// their identity or their lowercased handle is on the roster; gating on
// identity alone would lock out a freshly added admin whose identity has not
// been resolved yet. Admitted messages refresh the handle pairing. Rejected
// slash commands and private messages are logged but never answered.
func (b *Bot) admit(msg *tgbotapi.Message) bool {
	handle := strings.ToLower(msg.From.UserName)

	if b.admins.IsAdmin(msg.From.ID) || (handle != "" && b.admins.HasHandle(handle)) {
		if handle != "" {
			if err := b.admins.Resolve(handle, msg.From.ID); err != nil {
				logger.Err().Printf("Failed to update admin %s (%d): %v", handle, msg.From.ID, err)
			}
		}
		return true
	}

	if msg.Chat.IsPrivate() || strings.HasPrefix(msg.Text, "/") {
		logger.Out().Printf("User %s (%d) tried to use me, but is not an admin", msg.From.UserName, msg.From.ID)
	}
	return false
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) {
	b.sessions.clear(msg.From.ID)
	b.sendRemoveKeyboard(msg.Chat.ID, "Command cancelled!")
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if b.sessions.get(msg.From.ID) != nil {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	private := msg.Chat.IsPrivate()

	switch msg.Command() {
	case "start":
		if !private {
			return
		}
		logger.Out().Printf("User %s started with me", msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "Hi! Thanks for talking to me! If you're an admin, go ahead and give me commands.")

	case "help":
		b.sendHTML(msg.Chat.ID, helpText)

	case "addadmin":
		if !private {
			return
		}
		b.handleAddAdmin(msg)

	case "deladmin":
		if !private {
			return
		}
		b.handleDelAdmin(msg)

	case "purgeadmin":
		if !private {
			return
		}
		b.handlePurgeAdmin(msg)

	case "addpoll":
		b.handleAddPoll(msg)

	case "sendpoll":
		b.handleSendPoll(msg)

	case "delpoll":
		b.handleDelPoll(msg)

	case "listpolls":
		if !private {
			return
		}
		b.handleListPolls(msg)

	case "inspectpoll":
		if !private {
			return
		}
		b.handleInspectPoll(msg)

	default:
		if private {
			b.sendMessage(msg.Chat.ID, "Unknown command. Use /help to see available commands.")
		}
	}
}

// continueFlow hands the reply to the handler for the user's active flow.
func (b *Bot) continueFlow(msg *tgbotapi.Message, sess *Session) {
	switch sess.Intent {
	case IntentCreatePoll:
		b.continueCreate(msg, sess)
	case IntentSendPoll:
		b.handleSendPick(msg, sess)
	case IntentDeletePoll:
		b.handleDeletePick(msg, sess)
	case IntentInspectPoll:
		b.handleInspectPick(msg, sess)
	case IntentPurgeAdmins:
		b.handlePurgeConfirm(msg)
	}
}

const helpText = "This bot helps manage recurring polls for your group chats!\n" +
	"Here are the things you can do:\n" +
	"/addadmin [admin @] - Add an admin to the list of approved admins\n" +
	"/deladmin [admin @] - Remove an admin from the list of approved admins\n" +
	"/purgeadmin - Remove ALL ADMINS leaving only the owner in charge!!!\n" +
	"/addpoll - Start the process of making a new recurring poll (NOTE: you HAVE to start this in the group!)\n" +
	"/sendpoll - Send an existing poll <i>now!</i>\n" +
	"/delpoll - Delete an existing poll\n" +
	"/listpolls - List all of the polls available\n" +
	"/inspectpoll - Select a poll and see what's in it\n" +
	"<b>Note: you can only use these commands in private chat, except for addpoll, sendpoll, and delpoll, which start from a group chat</b>"

func (b *Bot) handleAddAdmin(msg *tgbotapi.Message) {
	handles := strings.Fields(msg.CommandArguments())
	if len(handles) == 0 {
		b.sendMessage(msg.Chat.ID, "You gotta give me admins to add!")
		return
	}
	for _, handle := range handles {
		if err := b.admins.Add(handle); err != nil {
			logger.Err().Printf("Failed to add admin %q: %v", handle, err)
		}
	}
	b.sendMessage(msg.Chat.ID, "Admin(s) added!")
}

func (b *Bot) handleDelAdmin(msg *tgbotapi.Message) {
	handles := strings.Fields(msg.CommandArguments())
	if len(handles) == 0 {
		b.sendMessage(msg.Chat.ID, "You gotta give me admins to remove!")
		return
	}
	for _, handle := range handles {
		if err := b.admins.Remove(handle); err != nil {
			logger.Err().Printf("Failed to remove admin %q: %v", handle, err)
		}
	}
	b.sendMessage(msg.Chat.ID, "Admin(s) removed!")
}

// SendPoll delivers a poll definition to its origin chat as a native
// Telegram poll. Also the scheduler's dispatch side effect.
func (b *Bot) SendPoll(p models.Poll) error {
	cfg := tgbotapi.NewPoll(p.ChatID, p.Question, p.Options...)
	cfg.IsAnonymous = p.Anonymous
	cfg.AllowsMultipleAnswers = p.AllowMultiple

	_, err := b.api.Send(cfg)
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendHTMLWithKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kb
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendRemoveKeyboard(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}
