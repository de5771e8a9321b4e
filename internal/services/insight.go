package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arnold/lifesync-api/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const deepThinkingBudget = 32768

type Correlation struct {
	Title string `json:"title"`
	Val   string `json:"val"`
	Desc  string `json:"desc"`
	Color string `json:"color"`
}

type Insight struct {
	Insight      string        `json:"insight"`
	Correlations []Correlation `json:"correlations"`
}

type InsightRequest struct {
	Goals    []models.Goal
	Entries  []models.JournalEntry
	Model    string
	Deep     bool
	Language string
	APIKey   string
}

// InsightService asks the model for a wellness and goal analysis. Failures
// never surface as errors; the caller always gets something to show.
type InsightService struct {
	gen    Generator
	log    *zap.SugaredLogger
	latest Latest[Insight]
}

func NewInsightService(gen Generator, log *zap.SugaredLogger) *InsightService {
	return &InsightService{gen: gen, log: log}
}

var insightSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"insight": {Type: genai.TypeString, Description: "General analysis and advice for the user."},
		"correlations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {Type: genai.TypeString},
					"val":   {Type: genai.TypeString, Description: "Correlation level (e.g., Strong, Positive, Low)"},
					"desc":  {Type: genai.TypeString},
					"color": {Type: genai.TypeString, Description: "One of: blue, emerald, purple"},
				},
				Required: []string{"title", "val", "desc", "color"},
			},
		},
	},
	Required: []string{"insight", "correlations"},
}

// Insight runs one analysis and records it as the latest result unless a
// newer request already finished.
func (s *InsightService) Insight(ctx context.Context, req InsightRequest) Insight {
	seq := s.latest.Begin()
	out := s.generate(ctx, req)
	s.latest.Publish(seq, out)
	return out
}

// Last returns the most recent analysis, if any.
func (s *InsightService) Last() (Insight, bool) {
	return s.latest.Get()
}

func (s *InsightService) generate(ctx context.Context, req InsightRequest) Insight {
	prompt, err := insightPrompt(req)
	if err != nil {
		s.log.Errorw("Failed to build insight prompt", "error", err)
		return fallbackInsight(req.Language, msgInsightFailed)
	}

	g := GenerateRequest{
		Model:       req.Model,
		Prompt:      prompt,
		Temperature: genai.Ptr[float32](0.7),
		JSON:        true,
		Schema:      insightSchema,
	}
	if g.Model == "" {
		g.Model = models.DefaultModel
	}
	if req.Deep {
		g.Model = models.DeepModel
		g.ThinkingBudget = deepThinkingBudget
	}

	text, err := s.gen.Generate(ctx, req.APIKey, g)
	if errors.Is(err, ErrMissingAPIKey) {
		return fallbackInsight(req.Language, msgInsightKeyMissing)
	}
	if err != nil {
		s.log.Errorw("Insight generation failed", "model", g.Model, "error", err)
		return fallbackInsight(req.Language, msgInsightFailed)
	}

	var out Insight
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		s.log.Errorw("Insight response is not valid JSON", "error", err)
		return fallbackInsight(req.Language, msgInsightFailed)
	}
	out.Insight = stripEmphasis(out.Insight)
	if out.Correlations == nil {
		out.Correlations = []Correlation{}
	}
	for i := range out.Correlations {
		out.Correlations[i].Desc = stripEmphasis(out.Correlations[i].Desc)
	}
	return out
}

func fallbackInsight(lang string, key messageKey) Insight {
	return Insight{Insight: message(lang, key), Correlations: []Correlation{}}
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

type wellnessAverages struct {
	Mood          float64 `json:"mood"`
	Energy        float64 `json:"energy"`
	Sleep         float64 `json:"sleep"`
	Concentration float64 `json:"concentration"`
	Stress        float64 `json:"stress"`
}

type insightGoal struct {
	Title         string  `json:"title"`
	Progress      float64 `json:"progress"`
	Target        float64 `json:"target"`
	DailyProgress float64 `json:"dailyProgress"`
	DailyTarget   float64 `json:"dailyTarget"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
}

type insightEntry struct {
	Date          string   `json:"date"`
	Mood          int      `json:"mood"`
	Concentration int      `json:"concentration"`
	Sleep         int      `json:"sleep"`
	Energy        int      `json:"energy"`
	Stress        int      `json:"stress"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
}

type insightContext struct {
	TotalGoals          int               `json:"totalGoals"`
	ActiveGoals         []insightGoal     `json:"activeGoals"`
	CompletedGoalsCount int               `json:"completedGoalsCount"`
	AverageWellness     *wellnessAverages `json:"averageWellness"`
	RecentEntries       []insightEntry    `json:"recentEntries"`
}

func insightPrompt(req InsightRequest) (string, error) {
	data := insightContext{
		TotalGoals:    len(req.Goals),
		ActiveGoals:   []insightGoal{},
		RecentEntries: []insightEntry{},
	}
	for _, g := range req.Goals {
		switch g.Status {
		case models.StatusActive:
			data.ActiveGoals = append(data.ActiveGoals, insightGoal{
				Title:         g.Title,
				Progress:      g.Current,
				Target:        g.Target,
				DailyProgress: g.DailyProgress,
				DailyTarget:   g.DailyTarget,
				StartDate:     g.StartDate,
				EndDate:       g.EndDate,
			})
		case models.StatusCompleted:
			data.CompletedGoalsCount++
		}
	}

	var reports []models.JournalEntry
	for _, e := range req.Entries {
		if e.Wellness != nil {
			reports = append(reports, e)
		}
	}
	if len(reports) > 0 {
		avg := wellnessAverages{}
		for _, e := range reports {
			avg.Mood += float64(e.Wellness.Mood)
			avg.Energy += float64(e.Wellness.Energy)
			avg.Sleep += float64(e.Wellness.Sleep)
			avg.Concentration += float64(e.Wellness.Concentration)
			avg.Stress += float64(e.Wellness.Stress)
		}
		n := float64(len(reports))
		avg.Mood /= n
		avg.Energy /= n
		avg.Sleep /= n
		avg.Concentration /= n
		avg.Stress /= n
		data.AverageWellness = &avg
	}

	// Entries are stored newest first.
	for _, e := range reports[:min(7, len(reports))] {
		data.RecentEntries = append(data.RecentEntries, insightEntry{
			Date:          e.Date.Format("2006-01-02"),
			Mood:          e.Wellness.Mood,
			Concentration: e.Wellness.Concentration,
			Sleep:         e.Wellness.Sleep,
			Energy:        e.Wellness.Energy,
			Stress:        e.Wellness.Stress,
			Content:       truncateRunes(e.Content, 100),
			Tags:          e.Tags,
		})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(insightInstructions(req.Language), raw), nil
}

func insightInstructions(lang string) string {
	if lang == "en" {
		return "You are a wellness and productivity analyst. Study the user's goals and journal data below. " +
			"Find links between wellness metrics (mood, energy, sleep, concentration, stress) and goal progress. " +
			"Reply in English with a short practical insight and up to three correlations.\n\nData: %s"
	}
	return "Ти аналітик добробуту та продуктивності. Вивчи цілі та щоденник користувача нижче. " +
		"Знайди зв'язки між показниками самопочуття (настрій, енергія, сон, концентрація, стрес) і прогресом цілей. " +
		"Відповідай українською: коротка практична порада і до трьох кореляцій.\n\nДані: %s"
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
