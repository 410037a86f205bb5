package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyComment  = errors.New("empty comment")
	ErrNotFound      = errors.New("not found")
)

// Categories is the fixed spending category set. Labels double as the reply
// keyboard buttons, so matching is exact, never substring.
var Categories = []string{
	"🛒 Продукты",
	"👶 Дети",
	"🚇 Транспорт",
	"💊 Здоровье",
	"🍔 Еда вне дома",
	"🏠 Аренда жилья",
	"🎢 Развлечения",
	"🎁 Подарки",
	"👕 Шоппинг",
	"🐈‍⬛ Котики",
	"🏡 Дом, ремонт",
	"🌐 Сервисы",
	"📚 Образование",
	"✈️ Путешествия",
	"🌎 Прочее",
}

// IsCategory reports whether s exactly matches a known category label.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// Spending is a single persisted ledger row. Year and Month are derived from
// the save time so reports can filter without re-parsing dates.
type Spending struct {
	Year     string // "2026"
	Month    string // "01 january"
	Date     time.Time
	Amount   Money
	Comment  string
	Category string // empty until assigned
}

// NewSpending stamps a row with the given save time. Category starts empty.
func NewSpending(now time.Time, amount Money, comment string) Spending {
	return Spending{
		Year:    now.Format("2006"),
		Month:   strings.ToLower(now.Format("01 January")),
		Date:    now,
		Amount:  amount,
		Comment: strings.TrimSpace(comment),
	}
}

func (s Spending) Validate() error {
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Comment) == "" {
		return ErrEmptyComment
	}
	if s.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
