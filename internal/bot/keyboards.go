package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shortrest/tavernbot/internal/models"
)

const (
	cancelWord = "cancel"
	doneWord   = "done"
)

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)),
	)
}

func doneCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(doneWord),
			tgbotapi.NewKeyboardButton(cancelWord),
		),
	)
}

func weekMonthKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("weekly"),
			tgbotapi.NewKeyboardButton("monthly"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)),
	)
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("yes"),
			tgbotapi.NewKeyboardButton("no"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)),
	)
}

func yesCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("yes")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)),
	)
}

func multiAnswerKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("multiple answers"),
			tgbotapi.NewKeyboardButton("just one"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)),
	)
}

// remainingDaysKeyboard offers the weekdays not yet picked. Once at least
// one day is picked the done button appears next to cancel.
func remainingDaysKeyboard(picked []int) tgbotapi.ReplyKeyboardMarkup {
	var dayRow []tgbotapi.KeyboardButton
	for i, name := range models.WeekdayNames {
		used := false
		for _, d := range picked {
			if d == i+1 {
				used = true
				break
			}
		}
		if !used {
			dayRow = append(dayRow, tgbotapi.NewKeyboardButton(name))
		}
	}

	lastRow := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(cancelWord)}
	if len(picked) > 0 {
		lastRow = []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(doneWord),
			tgbotapi.NewKeyboardButton(cancelWord),
		}
	}
	if len(dayRow) == 0 {
		return tgbotapi.NewReplyKeyboard(lastRow)
	}
	return tgbotapi.NewReplyKeyboard(dayRow, lastRow)
}

// pollNamesKeyboard lays out poll names two per row with cancel on the last
// row, sharing it with the final name when the count is odd.
func pollNamesKeyboard(names []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i+1 < len(names); i += 2 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(names[i]),
			tgbotapi.NewKeyboardButton(names[i+1]),
		))
	}
	if len(names)%2 != 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(names[len(names)-1]),
			tgbotapi.NewKeyboardButton(cancelWord),
		))
	} else {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cancelWord)))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
