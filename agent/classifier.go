package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	ijson "github.com/richinex/docvision/internal/json"
	"github.com/richinex/docvision/llm"
)

// Classification is the classifier's verdict on whether a query needs
// document evidence.
type Classification struct {
	Reasoning      string `json:"reasoning"`
	NeedsDocuments bool   `json:"needs_documents"`
}

// Classifier decides whether a question requires document retrieval at
// all. Parse failures fall back per the configured policy: open (assume
// documents are needed) by default, closed when ClassifierFailClosed is
// set.
type Classifier struct {
	client     *llm.Client
	failClosed bool
	logger     zerolog.Logger
}

// NewClassifier creates a query classifier.
func NewClassifier(client *llm.Client, failClosed bool, logger zerolog.Logger) *Classifier {
	return &Classifier{client: client, failClosed: failClosed, logger: logger}
}

// Classify returns the classification for query. The error is always
// recoverable: when non-nil, the returned Classification carries the
// fallback verdict.
func (c *Classifier) Classify(ctx context.Context, query string) (Classification, error) {
	prompt := fmt.Sprintf(classificationPrompt, query)

	resp, err := c.client.ProcessText(ctx, []llm.Message{
		llm.SystemMessage(systemClassifier),
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 200, Temperature: 0})
	if err != nil {
		return c.fallback(), fmt.Errorf("%w: %v", ErrQueryClassification, err)
	}

	parsed, err := ijson.ExtractJSONFromResponse[Classification](resp.Text)
	if err != nil {
		return c.fallback(), fmt.Errorf("%w: %v", ErrQueryClassification, err)
	}
	return parsed, nil
}

func (c *Classifier) fallback() Classification {
	if c.failClosed {
		return Classification{
			Reasoning:      "Classification was unavailable, answering without document analysis.",
			NeedsDocuments: false,
		}
	}
	return Classification{
		Reasoning:      "Classification was unavailable, assuming document analysis is needed.",
		NeedsDocuments: true,
	}
}
