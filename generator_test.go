package fusion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everydev1618/gofusion/llm"
)

func TestTemplateGenerator(t *testing.T) {
	gen := TemplateGenerator{}

	out, err := gen.Generate(context.Background(), GenRequest{
		Framing: "You are a strategist.",
		Prompt:  "Problem Analysis for: launch plan",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Problem Analysis for: launch plan" {
		t.Errorf("output = %q, want the rendered prompt", out)
	}
}

func TestTemplateGeneratorHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TemplateGenerator{}.Generate(ctx, GenRequest{Prompt: "anything"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate error = %v, want context.Canceled", err)
	}
}

func TestGenFunc(t *testing.T) {
	gen := GenFunc(func(ctx context.Context, req GenRequest) (string, error) {
		return "echo: " + req.Prompt, nil
	})

	out, err := gen.Generate(context.Background(), GenRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "echo: hi" {
		t.Errorf("output = %q", out)
	}
}

func TestLLMGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"generated narrative"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	gen := NewLLMGenerator(llm.New(llm.WithBaseURL(srv.URL), llm.WithAPIKey("sk-test")))

	out, err := gen.Generate(context.Background(), GenRequest{
		Framing: "You are a narrator.",
		Prompt:  "Tell the story.",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "generated narrative" {
		t.Errorf("output = %q", out)
	}
}

func TestLLMGeneratorUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	gen := NewLLMGenerator(llm.New(llm.WithBaseURL(srv.URL), llm.WithAPIKey("sk-test")))

	_, err := gen.Generate(context.Background(), GenRequest{Prompt: "anything"})
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("Generate error = %v, want ErrGenerationUnavailable", err)
	}
}
