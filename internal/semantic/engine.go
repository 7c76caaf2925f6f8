// Package semantic is the AI-backed extraction engine. Given page content
// and one of four tasks it returns structured, schema-shaped JSON plus token
// accounting. It is written entirely against the llm.Client contract so
// provider backends are interchangeable.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/markscrivo/crewscrape/internal/extract"
	"github.com/markscrivo/crewscrape/internal/llm"
	"github.com/markscrivo/crewscrape/internal/usage"
	"github.com/rs/zerolog/log"
)

// Operation labels used in the usage ledger.
const (
	OpGameLink  = "extract_game_link"
	OpOfficials = "extract_officials"
	OpBoxscore  = "extract_officials_from_boxscore"
	OpPDFLink   = "extract_pdf_link"
)

// maxContentChars bounds the page content embedded in one prompt. Schedule
// pages routinely exceed this; the tail is chrome, not schedule rows.
const maxContentChars = 100_000

// Engine is the four-operation extraction contract from the pipeline's
// point of view.
type Engine interface {
	ExtractGameLink(ctx context.Context, html, targetDate, schoolDomain string) (GameLinkResult, error)
	ExtractOfficials(ctx context.Context, html, targetDate, schoolDomain string) (OfficialsResult, error)
	ExtractOfficialsFromBoxscore(ctx context.Context, html, opponent, schoolDomain string) (BoxscoreResult, error)
	ExtractPDFLink(ctx context.Context, html, opponent string) (PDFLinkResult, error)
	// Usage exposes this instance's ledger. One engine instance serves one
	// orchestrator run, so the ledger is per-request by construction.
	Usage() *usage.Tracker
}

// chatEngine implements Engine over any OpenAI-compatible chat backend.
type chatEngine struct {
	client  llm.Client
	model   string
	tracker *usage.Tracker
}

// NewEngine builds an Engine bound to a fresh usage tracker.
func NewEngine(client llm.Client, model string) Engine {
	return &chatEngine{client: client, model: model, tracker: usage.NewTracker()}
}

func (e *chatEngine) Usage() *usage.Tracker { return e.tracker }

func (e *chatEngine) ExtractGameLink(ctx context.Context, html, targetDate, schoolDomain string) (GameLinkResult, error) {
	var out GameLinkResult
	err := e.complete(ctx, OpGameLink, gameLinkSystem, gameLinkUser(truncate(html), targetDate, schoolDomain), &out)
	if err != nil {
		return GameLinkResult{}, err
	}
	if out.Game != nil && out.Game.BoxscoreURL != "" && out.BoxscoreURL == "" {
		out.BoxscoreURL = out.Game.BoxscoreURL
	}
	return out, nil
}

func (e *chatEngine) ExtractOfficials(ctx context.Context, html, targetDate, schoolDomain string) (OfficialsResult, error) {
	// No links are needed from this phase, so send stripped text to keep
	// the prompt small.
	content := truncate(extract.Text([]byte(html)))
	var out OfficialsResult
	if err := e.complete(ctx, OpOfficials, officialsSystem, officialsUser(content, targetDate, schoolDomain), &out); err != nil {
		return OfficialsResult{}, err
	}
	if out.Officials != nil {
		out.Officials.Canonicalize()
	}
	return out, nil
}

func (e *chatEngine) ExtractOfficialsFromBoxscore(ctx context.Context, html, opponent, schoolDomain string) (BoxscoreResult, error) {
	var out BoxscoreResult
	if err := e.complete(ctx, OpBoxscore, boxscoreSystem, boxscoreUser(truncate(html), opponent, schoolDomain), &out); err != nil {
		return BoxscoreResult{}, err
	}
	if out.Officials != nil {
		out.Officials.Canonicalize()
	}
	return out, nil
}

func (e *chatEngine) ExtractPDFLink(ctx context.Context, html, opponent string) (PDFLinkResult, error) {
	var out PDFLinkResult
	if err := e.complete(ctx, OpPDFLink, pdfLinkSystem, pdfLinkUser(truncate(html), opponent), &out); err != nil {
		return PDFLinkResult{}, err
	}
	return out, nil
}

// complete runs one chat call and decodes the JSON payload into out. Token
// usage is recorded as soon as the provider responds, before any parsing,
// so cost is accounted even when the payload turns out to be garbage.
func (e *chatEngine) complete(ctx context.Context, operation, system, user string, out any) error {
	if e.client == nil || e.model == "" {
		return errors.New("semantic engine not configured")
	}
	log.Debug().
		Str("stage", operation).
		Str("model", e.model).
		Int("system_len", len(system)).
		Int("user_len", len(user)).
		Msg("semantic extraction call")

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return fmt.Errorf("%s call: %w", operation, err)
	}

	cost := e.tracker.Track(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, e.model, operation)
	log.Debug().
		Str("stage", operation).
		Int("input_tokens", resp.Usage.PromptTokens).
		Int("output_tokens", resp.Usage.CompletionTokens).
		Float64("cost_usd", cost).
		Msg("usage recorded")

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s: no choices in response", operation)
	}
	raw, err := coerceJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := unmarshalStrictEnough(raw, out); err != nil {
		return fmt.Errorf("%s: parse payload: %w", operation, err)
	}
	return nil
}

func truncate(s string) string {
	if len(s) <= maxContentChars {
		return s
	}
	// Back off to a rune boundary so the cut never leaves a partial UTF-8
	// sequence in the prompt.
	cut := maxContentChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
