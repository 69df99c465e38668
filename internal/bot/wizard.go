package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/looplab/fsm"
	"github.com/spf13/cast"

	"github.com/shortrest/tavernbot/internal/logger"
	"github.com/shortrest/tavernbot/internal/models"
	"github.com/shortrest/tavernbot/internal/store"
)

// Creation wizard states, in flow order. The two accumulator states loop on
// themselves until the user sends the done sentinel.
const (
	stateSetName      = "set_name"
	stateSetQuestion  = "set_question"
	stateSetFrequency = "set_frequency"
	statePickDays     = "pick_days"
	stateAddAnswer    = "add_answer"
	stateSetAnonymous = "set_anonymous"
	stateSetMultiple  = "set_multiple"
	stateFinished     = "finished"
)

const (
	eventAdvance = "advance"
	eventDone    = "done"
)

func newCreateMachine() *fsm.FSM {
	return fsm.NewFSM(
		stateSetName,
		fsm.Events{
			{Name: eventAdvance, Src: []string{stateSetName}, Dst: stateSetQuestion},
			{Name: eventAdvance, Src: []string{stateSetQuestion}, Dst: stateSetFrequency},
			{Name: eventAdvance, Src: []string{stateSetFrequency}, Dst: statePickDays},
			{Name: eventDone, Src: []string{statePickDays}, Dst: stateAddAnswer},
			{Name: eventDone, Src: []string{stateAddAnswer}, Dst: stateSetAnonymous},
			{Name: eventAdvance, Src: []string{stateSetAnonymous}, Dst: stateSetMultiple},
			{Name: eventAdvance, Src: []string{stateSetMultiple}, Dst: stateFinished},
		},
		fsm.Callbacks{},
	)
}

const monthlyNote = " <b>Note: if you pick 29, 30, or 31 as a date, on months with fewer " +
	"than that many days the poll will by default land on the last day of the month.</b>"

// handleAddPoll starts the creation wizard. The command has to come from the
// group the poll is for; the rest of the flow happens in private messages.
func (b *Bot) handleAddPoll(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.sendMessage(msg.Chat.ID, "Start this in the chat you want the poll for!")
		return
	}

	sess := &Session{
		Intent:     IntentCreatePoll,
		OriginChat: msg.Chat.ID,
		Machine:    newCreateMachine(),
	}
	if !b.sessions.start(msg.From.ID, sess) {
		b.sendMessage(msg.Chat.ID, `You're in the middle of something! Finish it or say "cancel" first.`)
		return
	}

	b.sendMessage(msg.Chat.ID, "Let's make a poll!!! I've sent you a private message")
	b.sendMessage(msg.From.ID,
		"What name do you want to give this poll? This will be used for tracking polls, "+
			"but won't be visible in the poll.")
}

func (b *Bot) continueCreate(msg *tgbotapi.Message, sess *Session) {
	switch sess.Machine.Current() {
	case stateSetName:
		b.createSetName(msg, sess)
	case stateSetQuestion:
		b.createSetQuestion(msg, sess)
	case stateSetFrequency:
		b.createSetFrequency(msg, sess)
	case statePickDays:
		b.createPickDays(msg, sess)
	case stateAddAnswer:
		b.createAddAnswer(msg, sess)
	case stateSetAnonymous:
		b.createSetAnonymous(msg, sess)
	case stateSetMultiple:
		b.createSetMultiple(msg, sess)
	}
}

// advance fires a wizard transition. The event table covers every state the
// handlers fire from, so a failure here is a programming error worth a log
// line, not a user-facing condition.
func (b *Bot) advance(sess *Session, event string) {
	if err := sess.Machine.Event(context.Background(), event); err != nil {
		logger.Err().Printf("Wizard transition %q from %q failed: %v", event, sess.Machine.Current(), err)
	}
}

func (b *Bot) createSetName(msg *tgbotapi.Message, sess *Session) {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		b.sendMessage(msg.Chat.ID, "I need a name! Send me some text.")
		return
	}
	if b.polls.Has(name) {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("There's already a poll called %s! Pick another name.", name))
		return
	}

	sess.Draft.Name = name
	sess.Draft.ChatID = sess.OriginChat
	b.advance(sess, eventAdvance)
	b.sendWithKeyboard(msg.Chat.ID,
		"Awesome! Now send me the query -- this is what will be shown when the poll is posted",
		cancelKeyboard())
}

func (b *Bot) createSetQuestion(msg *tgbotapi.Message, sess *Session) {
	sess.Draft.Question = msg.Text
	b.advance(sess, eventAdvance)
	b.sendWithKeyboard(msg.Chat.ID,
		`Cool! Now, we gotta set poll frequency. Select "weekly" or "monthly" and then pick any `+
			"number of days of the week or days of the month.",
		weekMonthKeyboard())
}

func (b *Bot) createSetFrequency(msg *tgbotapi.Message, sess *Session) {
	freq := strings.ToLower(strings.TrimSpace(msg.Text))
	if freq != string(models.FrequencyWeekly) && freq != string(models.FrequencyMonthly) {
		b.sendMessage(msg.Chat.ID, "Please select weekly or monthly!")
		return
	}

	sess.Draft.Frequency = models.Frequency(freq)
	b.advance(sess, eventAdvance)

	prompt := fmt.Sprintf("Sweet! Now we gotta pick which days of the %s the poll will land on.",
		strings.TrimSuffix(freq, "ly"))
	if sess.Draft.Frequency == models.FrequencyMonthly {
		b.sendHTMLWithKeyboard(msg.Chat.ID, prompt+monthlyNote, cancelKeyboard())
	} else {
		b.sendWithKeyboard(msg.Chat.ID, prompt, remainingDaysKeyboard(nil))
	}
}

func (b *Bot) createPickDays(msg *tgbotapi.Message, sess *Session) {
	text := strings.ToLower(strings.TrimSpace(msg.Text))

	if text == doneWord {
		if len(sess.Draft.Days) == 0 {
			b.sendMessage(msg.Chat.ID, "Pick at least one day first!")
			return
		}
		b.advance(sess, eventDone)
		b.sendWithKeyboard(msg.Chat.ID, "Cool! Now give me an answer for the poll.", cancelKeyboard())
		return
	}

	var day int
	if sess.Draft.Frequency == models.FrequencyWeekly {
		n, ok := models.WeekdayNumber(text)
		if !ok {
			b.sendMessage(msg.Chat.ID, "That's not a valid option!!! Try again pls")
			return
		}
		day = n
	} else {
		n, err := cast.ToIntE(text)
		if err != nil || n < 1 || n > 31 {
			b.sendMessage(msg.Chat.ID, "That's not a valid option!!! Try again pls")
			return
		}
		day = n
	}

	picked := false
	for _, d := range sess.Draft.Days {
		if d == day {
			picked = true
			break
		}
	}
	if !picked {
		sess.Draft.Days = append(sess.Draft.Days, day)
	}

	prompt := `Awesome! Go ahead and pick another day or click the "done" button!`
	if sess.Draft.Frequency == models.FrequencyMonthly {
		b.sendHTMLWithKeyboard(msg.Chat.ID, prompt+monthlyNote, doneCancelKeyboard())
	} else {
		b.sendWithKeyboard(msg.Chat.ID, prompt, remainingDaysKeyboard(sess.Draft.Days))
	}
}

func (b *Bot) createAddAnswer(msg *tgbotapi.Message, sess *Session) {
	if strings.ToLower(strings.TrimSpace(msg.Text)) == doneWord {
		if len(sess.Draft.Options) == 0 {
			b.sendMessage(msg.Chat.ID, "Give me at least one answer first!")
			return
		}
		b.advance(sess, eventDone)
		b.sendWithKeyboard(msg.Chat.ID,
			"Sweet! Answers added. Now, do you want this poll to be anonymous?",
			yesNoKeyboard())
		return
	}

	sess.Draft.Options = append(sess.Draft.Options, msg.Text)
	b.sendWithKeyboard(msg.Chat.ID, `Awesome! Add another answer or click "done"!`, doneCancelKeyboard())
}

func (b *Bot) createSetAnonymous(msg *tgbotapi.Message, sess *Session) {
	sess.Draft.Anonymous = strings.ToLower(strings.TrimSpace(msg.Text)) == "yes"
	b.advance(sess, eventAdvance)
	b.sendWithKeyboard(msg.Chat.ID,
		"Cool! Final question! Do you want people to be able to choose multiple answers or just one?",
		multiAnswerKeyboard())
}

func (b *Bot) createSetMultiple(msg *tgbotapi.Message, sess *Session) {
	sess.Draft.AllowMultiple = strings.ToLower(strings.TrimSpace(msg.Text)) == "multiple answers"
	b.advance(sess, eventAdvance)

	err := b.polls.Create(sess.Draft)
	b.sessions.clear(msg.From.ID)
	if err != nil {
		logger.Err().Printf("Failed to save poll %q: %v", sess.Draft.Name, err)
		if errors.Is(err, store.ErrConflict) {
			b.sendRemoveKeyboard(msg.Chat.ID,
				"Someone made a poll with that name while we were talking! Start over with another name.")
			return
		}
		b.sendRemoveKeyboard(msg.Chat.ID, "Something went wrong saving the poll, sorry!")
		return
	}

	b.sendRemoveKeyboard(msg.Chat.ID,
		"WOOOOO you've made a quiz!!! It'll be posted on the schedule you "+
			"specified, and if you want to post one on command you can tell me to!")
}
