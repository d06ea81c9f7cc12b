package embedding

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/manualrag/helper"
)

// Client turns queries into vectors and never returns an error.
// An empty vector means no embedding is available for the query.
type Client struct {
	embed   EmbedFunc
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a new embedding client.
// A zero timeout leaves the deadline to the caller's context.
func NewClient(embed EmbedFunc, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		embed:   embed,
		timeout: timeout,
		logger:  logger,
	}
}

// Embed returns the embedding of the trimmed text.
// Blank text returns an empty vector without calling the backend.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if text == "" {
		return []float32{}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	embedding, err := c.embed(ctx, text)
	if err != nil {
		c.logger.Error("Error generating embedding", "error", err, "error_kind", helper.ErrKindEmbedding)
		return []float32{}
	}

	return embedding
}
