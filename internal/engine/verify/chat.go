package verify

import (
	"context"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go_clip/internal/engine"
)

// ChatCompleter adapts an OpenAI-compatible chat client.
type ChatCompleter struct {
	client *llm.Client
}

// NewChatCompleter builds a chat client from the verifier settings in cfg.
func NewChatCompleter(cfg engine.Config) *ChatCompleter {
	return &ChatCompleter{
		client: llm.NewClient(cfg.VerifierAPIBase, cfg.VerifierAPIKey, cfg.VerifierModel,
			llm.WithMaxTokens(cfg.VerifierMaxTokens),
			llm.WithTemperature(cfg.VerifierTemperature),
			llm.WithHTTPClient(engine.NewHTTPClient(60 * time.Second)),
		),
	}
}

// Complete sends prompt with no system message.
func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return c.client.Complete(ctx, "", prompt)
}

// NewCompleter picks the backend named by cfg.VerifierProvider.
func NewCompleter(cfg engine.Config) Completer {
	if cfg.VerifierProvider == engine.ProviderOpenAI {
		return NewChatCompleter(cfg)
	}
	return NewMessagesClient(cfg, nil)
}

// NewFromConfig wires a Verifier with the configured backend, batch size,
// timeout and rate-limited pacer.
func NewFromConfig(cfg engine.Config) *Verifier {
	return New(NewCompleter(cfg),
		WithBatchSize(cfg.VerifyBatchSize),
		WithTimeout(cfg.CallTimeout),
		WithPacer(NewIntervalPacer(cfg.VerifyInterval, cfg.VerifyBurst)),
	)
}
