package semantic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// stubClient returns canned responses and captures the requests it saw.
type stubClient struct {
	responses []string
	err       error
	requests  []openai.ChatCompletionRequest
	usage     openai.Usage
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	content := "{}"
	if len(s.responses) > 0 {
		content = s.responses[0]
		s.responses = s.responses[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
		Usage:   s.usage,
	}, nil
}

func TestExtractGameLink(t *testing.T) {
	stub := &stubClient{
		responses: []string{`{"gameFound": true, "game": {"date": "09/06/25", "opponent": "East State"}, "boxscoreUrl": "/boxscore/123", "pdfUrl": null}`},
		usage:     openai.Usage{PromptTokens: 1000, CompletionTokens: 50},
	}
	e := NewEngine(stub, "gpt-4o-mini")

	res, err := e.ExtractGameLink(context.Background(), "<html>schedule</html>", "09/06/25", "seminoles.com")
	if err != nil {
		t.Fatalf("ExtractGameLink: %v", err)
	}
	if !res.GameFound || res.Game == nil || res.Game.Opponent != "East State" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.BoxscoreURL != "/boxscore/123" {
		t.Fatalf("boxscore url = %q", res.BoxscoreURL)
	}

	// Prompt must carry the target-date renderings.
	user := stub.requests[0].Messages[1].Content
	if !strings.Contains(user, "September 6") || !strings.Contains(user, "9/6/25") {
		t.Fatalf("prompt missing date renderings: %q", user[:200])
	}

	s := e.Usage().Summary()
	if s.OperationCount != 1 || s.TotalInputTokens != 1000 {
		t.Fatalf("usage not recorded: %+v", s)
	}
}

func TestExtractOfficialsFromBoxscoreCanonicalizesNames(t *testing.T) {
	stub := &stubClient{
		responses: []string{`{"gameFound": true, "officials": {"referee": "Smith,John", "umpire": "ADAM JONES"}}`},
	}
	e := NewEngine(stub, "gpt-4o-mini")

	res, err := e.ExtractOfficialsFromBoxscore(context.Background(), "<html>box</html>", "East State", "seminoles.com")
	if err != nil {
		t.Fatalf("ExtractOfficialsFromBoxscore: %v", err)
	}
	if res.Officials == nil {
		t.Fatal("officials missing")
	}
	if res.Officials.Referee != "John Smith" {
		t.Fatalf("referee = %q, want canonical display order", res.Officials.Referee)
	}
	if res.Officials.Umpire != "Adam Jones" {
		t.Fatalf("umpire = %q, want title-cased", res.Officials.Umpire)
	}
	if res.Officials.Count() != 2 {
		t.Fatalf("count = %d", res.Officials.Count())
	}
}

func TestExtractOfficialsFromBoxscoreSecondaryLink(t *testing.T) {
	stub := &stubClient{
		responses: []string{`{"gameFound": true, "officials": null, "secondaryBoxscoreUrl": "/stats/football/2025/game7"}`},
	}
	e := NewEngine(stub, "gpt-4o-mini")

	res, err := e.ExtractOfficialsFromBoxscore(context.Background(), "<html>thin box</html>", "East State", "seminoles.com")
	if err != nil {
		t.Fatalf("ExtractOfficialsFromBoxscore: %v", err)
	}
	if res.Officials != nil {
		t.Fatalf("officials should be nil, got %+v", res.Officials)
	}
	if res.SecondaryBoxscoreURL != "/stats/football/2025/game7" {
		t.Fatalf("secondary url = %q", res.SecondaryBoxscoreURL)
	}
}

func TestExtractPDFLink(t *testing.T) {
	stub := &stubClient{responses: []string{`{"pdfFound": true, "pdfUrl": "/documents/2025/9/6/box.pdf"}`}}
	e := NewEngine(stub, "gpt-4o-mini")

	res, err := e.ExtractPDFLink(context.Background(), "<html>box</html>", "East State")
	if err != nil {
		t.Fatalf("ExtractPDFLink: %v", err)
	}
	if !res.PDFFound || res.PDFURL != "/documents/2025/9/6/box.pdf" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

// Usage must be recorded even when the payload cannot be parsed: the tokens
// were spent either way.
func TestUsageRecordedBeforeParseFailure(t *testing.T) {
	stub := &stubClient{
		responses: []string{"I could not find any structured data on that page, sorry."},
		usage:     openai.Usage{PromptTokens: 500, CompletionTokens: 20},
	}
	e := NewEngine(stub, "gpt-4o-mini")

	_, err := e.ExtractGameLink(context.Background(), "<html></html>", "09/06/25", "seminoles.com")
	if !errors.Is(err, ErrBadJSON) {
		t.Fatalf("err = %v, want ErrBadJSON", err)
	}
	s := e.Usage().Summary()
	if s.OperationCount != 1 || s.TotalInputTokens != 500 {
		t.Fatalf("usage should be recorded despite parse failure: %+v", s)
	}
}

func TestProviderErrorPropagates(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}
	e := NewEngine(stub, "gpt-4o-mini")
	if _, err := e.ExtractOfficials(context.Background(), "<html></html>", "09/06/25", "x.com"); err == nil {
		t.Fatal("provider error should propagate")
	}
	if s := e.Usage().Summary(); s.OperationCount != 0 {
		t.Fatalf("no usage to record on transport failure: %+v", s)
	}
}

func TestTwoCallsAccumulateCost(t *testing.T) {
	stub := &stubClient{
		responses: []string{
			`{"gameFound": true, "game": {"date": "09/06/25", "opponent": "East State"}}`,
			`{"gameFound": true, "officials": {"referee": "John Smith"}}`,
		},
		usage: openai.Usage{PromptTokens: 1000, CompletionTokens: 100},
	}
	e := NewEngine(stub, "gpt-4o-mini")
	ctx := context.Background()
	if _, err := e.ExtractGameLink(ctx, "<html></html>", "09/06/25", "x.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExtractOfficialsFromBoxscore(ctx, "<html></html>", "East State", "x.com"); err != nil {
		t.Fatal(err)
	}
	s := e.Usage().Summary()
	if s.OperationCount != 2 {
		t.Fatalf("operationCount = %d", s.OperationCount)
	}
	// 2 calls at the same known pricing must sum exactly.
	perCall := s.ByOperation[OpGameLink].Cost
	if s.TotalCost != perCall+s.ByOperation[OpBoxscore].Cost {
		t.Fatalf("total cost %f does not equal sum of per-operation costs", s.TotalCost)
	}
}

// Truncation must never split a multibyte rune at the cut point.
func TestTruncateKeepsRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", maxContentChars) // 2 bytes per rune
	got := truncate(long)
	if len(got) > maxContentChars {
		t.Fatalf("len = %d, want <= %d", len(got), maxContentChars)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncated content carries a partial UTF-8 sequence")
	}

	short := "plain ascii"
	if truncate(short) != short {
		t.Fatal("short content must pass through untouched")
	}
}
