package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/dto"
)

const explanationWorkers = 4

// ExplanationService drafts question explanations with Gemini. It never
// touches the store.
type ExplanationService interface {
	Draft(ctx context.Context, req dto.ExplanationRequest) (*dto.ExplanationResponse, error)
}

// contentGenerator is the slice of *genai.GenerativeModel the service uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type explanationService struct {
	model   contentGenerator
	workers int
}

func NewExplanationService(lc fx.Lifecycle, cfg *config.Config) (ExplanationService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Explanation drafting will be unavailable.")
		return newExplanationService(nil), nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0.3)
	return newExplanationService(model), nil
}

func newExplanationService(model contentGenerator) *explanationService {
	return &explanationService{model: model, workers: explanationWorkers}
}

func (s *explanationService) Draft(ctx context.Context, req dto.ExplanationRequest) (*dto.ExplanationResponse, error) {
	if s.model == nil {
		return nil, apperr.Unavailable("Explanation drafting is not configured")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	explanations := make([]string, len(req.Questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range req.Questions {
		i := i
		draft := req.Questions[i]
		g.Go(func() error {
			text, err := s.draftOne(gctx, draft)
			if err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			explanations[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Int("questions", len(req.Questions)).Msg("Gemini explanation drafting failed")
		return nil, apperr.Unavailable("Failed to draft explanations, please try again")
	}
	return &dto.ExplanationResponse{Explanations: explanations}, nil
}

func (s *explanationService) draftOne(ctx context.Context, draft dto.QuestionDraft) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(explanationPrompt(draft)))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}

func explanationPrompt(draft dto.QuestionDraft) string {
	correct := 0
	if draft.CorrectOption != nil {
		correct = *draft.CorrectOption
	}

	var b strings.Builder
	b.WriteString("You are helping a teacher write a multiple-choice quiz.\n")
	b.WriteString("Write a short explanation (2 to 4 sentences) of why the marked option is correct ")
	b.WriteString("and, where useful, why the most tempting wrong option is not.\n")
	b.WriteString("Reply with the explanation text only.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", draft.Text)
	for i, option := range draft.Options {
		marker := " "
		if i == correct {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %c) %s\n", marker, 'A'+i, option)
	}
	return b.String()
}
