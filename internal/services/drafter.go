package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arnold/lifesync-api/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Drafter writes journal entry drafts from a short prompt.
type Drafter struct {
	gen Generator
	log *zap.SugaredLogger
}

func NewDrafter(gen Generator, log *zap.SugaredLogger) *Drafter {
	return &Drafter{gen: gen, log: log}
}

// Draft returns generated text, or a localized message when generation is
// not possible.
func (d *Drafter) Draft(ctx context.Context, prompt, lang, apiKey string) string {
	text, err := d.gen.Generate(ctx, apiKey, GenerateRequest{
		Model:       models.DraftModel,
		System:      draftInstructions(lang),
		Prompt:      prompt,
		Temperature: genai.Ptr[float32](0.8),
	})
	if errors.Is(err, ErrMissingAPIKey) {
		return message(lang, msgDraftKeyMissing)
	}
	if err != nil {
		d.log.Errorw("Journal draft failed", "error", err)
		return message(lang, msgDraftFailed)
	}
	return strings.TrimSpace(text)
}

func draftInstructions(lang string) string {
	if lang == "en" {
		return "You help the user write a personal journal entry. Write in the first person, " +
			"in English, warm and reflective, no more than three short paragraphs."
	}
	return "Ти допомагаєш користувачу написати запис в особистий щоденник. Пиши від першої особи, " +
		"українською, тепло та вдумливо, не більше трьох коротких абзаців."
}
