package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"safebites-be/pkg/embedding"
	"safebites-be/pkg/llm"
)

var ErrUnscripted = errors.New("no scripted reply for prompt")

type scriptedReply struct {
	contains []string
	reply    string
	err      error
	block    bool
}

func (r scriptedReply) matches(prompt string) bool {
	for _, s := range r.contains {
		if !strings.Contains(prompt, s) {
			return false
		}
	}
	return true
}

// FakeLLM answers prompts from a script. The first rule whose substrings all
// appear in the prompt wins; unmatched prompts fail with ErrUnscripted.
type FakeLLM struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
}

var _ llm.LLMProvider = (*FakeLLM)(nil)

func NewFakeLLM() *FakeLLM {
	return &FakeLLM{}
}

func (f *FakeLLM) Script(reply string, contains ...string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, scriptedReply{contains: contains, reply: reply})
	return f
}

func (f *FakeLLM) Fail(err error, contains ...string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, scriptedReply{contains: contains, err: err})
	return f
}

// Block makes matching prompts hang until the caller's context is done.
func (f *FakeLLM) Block(contains ...string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, scriptedReply{contains: contains, block: true})
	return f
}

func (f *FakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rule, ok := f.match(prompt)
	if !ok {
		return "", fmt.Errorf("%w: %.80q", ErrUnscripted, prompt)
	}
	if rule.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return rule.reply, rule.err
}

func (f *FakeLLM) match(prompt string) (scriptedReply, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for _, r := range f.replies {
		if r.matches(prompt) {
			return r, true
		}
	}
	return scriptedReply{}, false
}

func (f *FakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	parts := make([]string, 0, len(history))
	for _, m := range history {
		parts = append(parts, m.Content)
	}
	return f.Generate(ctx, strings.Join(parts, "\n"), options...)
}

func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// CallsMatching counts prompts that contained every given substring.
func (f *FakeLLM) CallsMatching(contains ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule := scriptedReply{contains: contains}
	n := 0
	for _, p := range f.prompts {
		if rule.matches(p) {
			n++
		}
	}
	return n
}

// FakeEmbedder maps texts to fixed vectors. Texts are matched exactly first,
// then by substring in registration order.
type FakeEmbedder struct {
	mu          sync.Mutex
	exact       map[string][]float32
	keys        []string
	bySubstring map[string][]float32
	fallback    []float32
	Err         error
}

var _ embedding.EmbeddingProvider = (*FakeEmbedder)(nil)

func NewFakeEmbedder(fallback []float32) *FakeEmbedder {
	return &FakeEmbedder{
		exact:       make(map[string][]float32),
		bySubstring: make(map[string][]float32),
		fallback:    fallback,
	}
}

func (f *FakeEmbedder) Set(text string, vector []float32) *FakeEmbedder {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[text] = vector
	return f
}

func (f *FakeEmbedder) SetContaining(substr string, vector []float32) *FakeEmbedder {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, substr)
	f.bySubstring[substr] = vector
	return f
}

func (f *FakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	vector, ok := f.exact[text]
	if !ok {
		for _, k := range f.keys {
			if strings.Contains(text, k) {
				vector, ok = f.bySubstring[k], true
				break
			}
		}
	}
	if !ok {
		if f.fallback == nil {
			return nil, fmt.Errorf("no embedding for %q", text)
		}
		vector = f.fallback
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vector},
	}, nil
}
