package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shortrest/tavernbot/internal/logger"
	"github.com/shortrest/tavernbot/internal/store"
)

const purgePhrase = "Yes, I'm sure."

// handleSendPoll lists the origin group's polls for the user to pick one and
// fire it immediately. Like poll creation, the pick itself happens in
// private messages.
func (b *Bot) handleSendPoll(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.sendMessage(msg.Chat.ID, "Run this command in a group first!")
		return
	}

	names := b.polls.NamesForChat(msg.Chat.ID)
	if len(names) == 0 {
		b.sendMessage(msg.Chat.ID, "This group doesn't have any polls yet! Use /addpoll to make one.")
		return
	}

	sess := &Session{Intent: IntentSendPoll, OriginChat: msg.Chat.ID}
	if !b.sessions.start(msg.From.ID, sess) {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	b.sendMessage(msg.Chat.ID, "I'm sending you a dm!")
	b.sendWithKeyboard(msg.From.ID, "Pick one of these polls to send and i'll send it!!",
		pollNamesKeyboard(names))
}

func (b *Bot) handleSendPick(msg *tgbotapi.Message, sess *Session) {
	poll, err := b.polls.Get(msg.Text)
	if err != nil || poll.ChatID != sess.OriginChat {
		b.sendMessage(msg.Chat.ID, `That wasn't an option!!! Try again or say "cancel"`)
		return
	}

	b.sendRemoveKeyboard(msg.Chat.ID, "cool!! Sending poll now!")
	if err := b.SendPoll(poll); err != nil {
		logger.Err().Printf("Failed to send poll %q to chat %d: %v", poll.Name, poll.ChatID, err)
		b.sendMessage(msg.Chat.ID, "Couldn't send the poll, something went wrong!")
	}
	b.sessions.clear(msg.From.ID)
}

// handleDelPoll lists the origin group's polls for the user to pick one to
// delete, with a confirmation step before anything is removed.
func (b *Bot) handleDelPoll(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.sendMessage(msg.Chat.ID, "Run this command in a group first!")
		return
	}

	names := b.polls.NamesForChat(msg.Chat.ID)
	if len(names) == 0 {
		b.sendMessage(msg.Chat.ID, "This group doesn't have any polls yet! Use /addpoll to make one.")
		return
	}

	sess := &Session{Intent: IntentDeletePoll, OriginChat: msg.Chat.ID}
	if !b.sessions.start(msg.From.ID, sess) {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	b.sendMessage(msg.Chat.ID, "I'm sending you a dm!")
	b.sendWithKeyboard(msg.From.ID, "Pick one of these polls to delete and i'll delete it!!",
		pollNamesKeyboard(names))
}

func (b *Bot) handleDeletePick(msg *tgbotapi.Message, sess *Session) {
	if sess.Picked == "" {
		poll, err := b.polls.Get(msg.Text)
		if err != nil || poll.ChatID != sess.OriginChat {
			b.sendMessage(msg.Chat.ID, `That wasn't an option!!! Try again or say "cancel"`)
			return
		}
		sess.Picked = poll.Name
		b.sendWithKeyboard(msg.Chat.ID,
			fmt.Sprintf("Are you sure you want to delete the poll %s?", poll.Name),
			yesCancelKeyboard())
		return
	}

	if strings.ToLower(strings.TrimSpace(msg.Text)) != "yes" {
		b.sessions.clear(msg.From.ID)
		b.sendRemoveKeyboard(msg.Chat.ID, "Good good, nothing deleted!")
		return
	}

	err := b.polls.Delete(sess.Picked)
	b.sessions.clear(msg.From.ID)
	if errors.Is(err, store.ErrNotFound) {
		b.sendRemoveKeyboard(msg.Chat.ID, "That poll is already gone!")
		return
	}
	if err != nil {
		logger.Err().Printf("Failed to delete poll %q: %v", sess.Picked, err)
		b.sendRemoveKeyboard(msg.Chat.ID, "Couldn't delete the poll, something went wrong!")
		return
	}
	b.sendRemoveKeyboard(msg.Chat.ID, "Poll deleted!")
}

func (b *Bot) handleListPolls(msg *tgbotapi.Message) {
	names := b.polls.Names()
	if len(names) == 0 {
		b.sendMessage(msg.Chat.ID, "There are no polls yet!")
		return
	}
	b.sendMessage(msg.Chat.ID, "Here are the polls available:\n"+strings.Join(names, "\n"))
}

func (b *Bot) handleInspectPoll(msg *tgbotapi.Message) {
	names := b.polls.Names()
	if len(names) == 0 {
		b.sendMessage(msg.Chat.ID, "There are no polls yet!")
		return
	}

	sess := &Session{Intent: IntentInspectPoll}
	if !b.sessions.start(msg.From.ID, sess) {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	b.sendWithKeyboard(msg.Chat.ID, "Pick one of the following polls to see more about it!",
		pollNamesKeyboard(names))
}

func (b *Bot) handleInspectPick(msg *tgbotapi.Message, sess *Session) {
	poll, err := b.polls.Get(msg.Text)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "That's not a poll!! Pick one of the polls you do have!!!")
		return
	}

	m := tgbotapi.NewMessage(msg.Chat.ID, poll.Printable())
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := b.api.Send(m); err != nil {
		logger.Err().Printf("Failed to send message to chat %d: %v", msg.Chat.ID, err)
	}
	b.sessions.clear(msg.From.ID)
}

func (b *Bot) handlePurgeAdmin(msg *tgbotapi.Message) {
	sess := &Session{Intent: IntentPurgeAdmins}
	if !b.sessions.start(msg.From.ID, sess) {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Are you sure you want to purge all admins? The result of this action will leave "+
			"the owner as the only admin. (Say %q exactly to confirm)", purgePhrase))
}

func (b *Bot) handlePurgeConfirm(msg *tgbotapi.Message) {
	b.sessions.clear(msg.From.ID)

	if msg.Text != purgePhrase {
		b.sendMessage(msg.Chat.ID, "Good good no purge will happen")
		return
	}

	if err := b.admins.Purge(); err != nil {
		logger.Err().Printf("Failed to purge admins: %v", err)
		b.sendMessage(msg.Chat.ID, "Couldn't purge the admins, something went wrong!")
		return
	}
	b.sendMessage(msg.Chat.ID, "Alright, purging all admins... You'll have to talk to the owner to get things up again.")
}
