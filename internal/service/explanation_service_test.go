package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/dto"
)

type fakeGenerator struct {
	calls atomic.Int32
	reply func(prompt string) (*genai.GenerateContentResponse, error)
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls.Add(1)
	var prompt strings.Builder
	for _, p := range parts {
		if txt, ok := p.(genai.Text); ok {
			prompt.WriteString(string(txt))
		}
	}
	return f.reply(prompt.String())
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
		}},
	}
}

func TestDraftExplanationsUnconfigured(t *testing.T) {
	svc := newExplanationService(nil)
	_, err := svc.Draft(context.Background(), dto.ExplanationRequest{
		Questions: []dto.QuestionDraft{draft("What is two plus two?", 1, 0)},
	})
	assertKind(t, err, apperr.KindUnavailable)
}

func TestDraftExplanationsKeepsInputOrder(t *testing.T) {
	gen := &fakeGenerator{reply: func(prompt string) (*genai.GenerateContentResponse, error) {
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "Question: ") {
				return textResponse("  because " + strings.TrimPrefix(line, "Question: ") + "\n"), nil
			}
		}
		return nil, errors.New("prompt without question")
	}}
	svc := newExplanationService(gen)

	req := dto.ExplanationRequest{}
	for _, text := range []string{"First question text", "Second question text", "Third question text", "Fourth question text", "Fifth question text"} {
		req.Questions = append(req.Questions, draft(text, 2, 0))
	}
	resp, err := svc.Draft(context.Background(), req)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(resp.Explanations) != 5 {
		t.Fatalf("explanations = %d, want 5", len(resp.Explanations))
	}
	for i, q := range req.Questions {
		if want := "because " + q.Text; resp.Explanations[i] != want {
			t.Errorf("explanation %d = %q, want %q", i, resp.Explanations[i], want)
		}
	}
	if got := gen.calls.Load(); got != 5 {
		t.Errorf("model calls = %d, want 5", got)
	}
}

func TestDraftExplanationsFailsAsUnavailable(t *testing.T) {
	gen := &fakeGenerator{reply: func(prompt string) (*genai.GenerateContentResponse, error) {
		if strings.Contains(prompt, "Broken") {
			return nil, errors.New("quota exceeded")
		}
		return textResponse("fine"), nil
	}}
	svc := newExplanationService(gen)

	_, err := svc.Draft(context.Background(), dto.ExplanationRequest{Questions: []dto.QuestionDraft{
		draft("Healthy question text", 0, 0),
		draft("Broken question text", 1, 1),
	}})
	assertKind(t, err, apperr.KindUnavailable)

	empty := newExplanationService(&fakeGenerator{reply: func(string) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}})
	_, err = empty.Draft(context.Background(), dto.ExplanationRequest{Questions: []dto.QuestionDraft{draft("Healthy question text", 0, 0)}})
	assertKind(t, err, apperr.KindUnavailable)
}

func TestDraftExplanationsValidatesInput(t *testing.T) {
	svc := newExplanationService(&fakeGenerator{reply: func(string) (*genai.GenerateContentResponse, error) {
		return textResponse("unused"), nil
	}})
	_, err := svc.Draft(context.Background(), dto.ExplanationRequest{})
	assertKind(t, err, apperr.KindValidation)
}

func TestExplanationPromptMarksCorrectOption(t *testing.T) {
	prompt := explanationPrompt(draft("Which letter is marked?", 2, 0))
	if !strings.Contains(prompt, "* C) Option C") {
		t.Errorf("prompt does not mark option C:\n%s", prompt)
	}
	if !strings.Contains(prompt, "  A) Option A") {
		t.Errorf("prompt marks option A:\n%s", prompt)
	}
}
