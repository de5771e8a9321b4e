package services

import "github.com/arnold/lifesync-api/internal/models"

type messageKey int

const (
	msgInsightKeyMissing messageKey = iota
	msgInsightFailed
	msgDraftKeyMissing
	msgDraftFailed
	msgChatFailed
	msgChatKeyMissing
	msgChatDefaultTitle
	msgChatGreeting
	msgReminderFrozenTitle
	msgReminderFrozenBody
	msgReminderCriticalTitle
	msgReminderCriticalBody
)

var catalog = map[string]map[messageKey]string{
	"en": {
		msgInsightKeyMissing:     "Add a Gemini API key in settings to get AI analytics.",
		msgInsightFailed:         "AI analysis is unavailable right now. Try again later.",
		msgDraftKeyMissing:       "Add a Gemini API key in settings to draft entries with AI.",
		msgDraftFailed:           "Could not draft an entry right now. Try again later.",
		msgChatFailed:            "Sorry, something went wrong. Please try again.",
		msgChatKeyMissing:        "The Gemini API key is missing or invalid. Check your settings.",
		msgChatDefaultTitle:      "New chat",
		msgChatGreeting:          "Hi! I'm your LifeSync coach. What would you like to work on today?",
		msgReminderFrozenTitle:   "Goal deadline passed",
		msgReminderFrozenBody:    "\"%s\" is frozen. Extend it or mark it as failed.",
		msgReminderCriticalTitle: "Deadline is close",
		msgReminderCriticalBody:  "Less than two days left for \"%s\".",
	},
	"uk": {
		msgInsightKeyMissing:     "Додайте ключ Gemini API у налаштуваннях, щоб отримати AI-аналітику.",
		msgInsightFailed:         "AI-аналіз зараз недоступний. Спробуйте пізніше.",
		msgDraftKeyMissing:       "Додайте ключ Gemini API у налаштуваннях, щоб писати нотатки з AI.",
		msgDraftFailed:           "Не вдалося згенерувати запис. Спробуйте пізніше.",
		msgChatFailed:            "Вибачте, сталася помилка. Спробуйте ще раз.",
		msgChatKeyMissing:        "Ключ Gemini API відсутній або недійсний. Перевірте налаштування.",
		msgChatDefaultTitle:      "Новий чат",
		msgChatGreeting:          "Привіт! Я ваш коуч LifeSync. Над чим попрацюємо сьогодні?",
		msgReminderFrozenTitle:   "Термін цілі минув",
		msgReminderFrozenBody:    "\"%s\" заморожено. Продовжте її або позначте як невдалу.",
		msgReminderCriticalTitle: "Дедлайн близько",
		msgReminderCriticalBody:  "До завершення \"%s\" лишилося менше двох днів.",
	},
}

// message looks up a localized string, falling back to the default language.
func message(lang string, key messageKey) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return catalog[models.DefaultLanguage][key]
}
