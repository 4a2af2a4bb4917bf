package scriptwriter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	xhttp "StockScribe/pkg/http"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Good evening, investors.", "Good evening, investors."},
		{"fenced", "```\nGood evening.\n```", "Good evening."},
		{"language tag", "```markdown\nGood evening.\n```", "Good evening."},
		{"surrounding space", "  \n```\nGood evening.\n```\n", "Good evening."},
		{"inner fences kept", "Line one\n```\ncode\n```\nline two", "Line one\n```\ncode\n```\nline two"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := stripFences(c.in); got != c.want {
				t.Fatalf("stripFences(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestOllamaGenerate(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"response":"`+"```"+`\nGood evening, investors.\n`+"```"+`","done":true}`)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "", xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), nil)

	script, err := o.Generate(context.Background(), "Write about AAPL")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if script != "Good evening, investors." {
		t.Fatalf("fences not stripped: %q", script)
	}
	if got.Model != DefaultOllamaModel {
		t.Errorf("unexpected model %q", got.Model)
	}
	if got.Prompt != "Write about AAPL" {
		t.Errorf("unexpected prompt %q", got.Prompt)
	}
	if got.Stream {
		t.Errorf("expected non-streaming request")
	}
	if got.Options.Temperature != ollamaTemperature {
		t.Errorf("unexpected temperature %v", got.Options.Temperature)
	}
}

func TestOllamaGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "", xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), nil)
	_, err := o.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "empty script") {
		t.Fatalf("expected empty script error, got %v", err)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "", xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), nil)
	if _, err := o.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error")
	}
}
