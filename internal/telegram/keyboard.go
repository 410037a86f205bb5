package telegram

import (
	"finbot/internal/core"
	"finbot/internal/report"
	"finbot/internal/router"
)

type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

const categoriesPerRow = 3

// MainKeyboard is the persistent reply keyboard: running total on top, the
// four report buttons, cancel, then the category grid.
func MainKeyboard() *ReplyKeyboardMarkup {
	rows := [][]KeyboardButton{
		{{Text: router.TotalLabel}},
		{
			{Text: report.LabelDay},
			{Text: report.LabelWeek},
			{Text: report.LabelMonth},
			{Text: report.LabelYear},
		},
		{{Text: router.CancelLabel}},
	}

	var row []KeyboardButton
	for _, category := range core.Categories {
		row = append(row, KeyboardButton{Text: category})
		if len(row) == categoriesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}
