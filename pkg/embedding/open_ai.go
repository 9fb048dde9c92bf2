package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dishdash/pkg/vectormath"

	openai "github.com/sashabaranov/go-openai"
)

// openAIMaxBatch is the number of inputs sent per embeddings request.
const openAIMaxBatch = 512

type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dimension int
}

func NewOpenAIProvider(apiKey, model, baseURL string, dimension int) *OpenAIProvider {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimension <= 0 {
		dimension = 1536
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
	}
}

func (o *OpenAIProvider) Name() string {
	return fmt.Sprintf("openai:%s:%d", o.model, o.dimension)
}

func (o *OpenAIProvider) Dimension() int { return o.dimension }

func (o *OpenAIProvider) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, o, text)
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	out := make([]vectormath.Vector, 0, len(texts))
	for _, part := range chunk(texts, openAIMaxBatch) {
		vectors, err := o.request(ctx, part)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	if err := checkBatch(texts, out, o.dimension); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OpenAIProvider) request(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	}
	// only the v3 models accept a shortened output dimension
	if strings.HasPrefix(o.model, "text-embedding-3") {
		req.Dimensions = o.dimension
	}

	resp, err := o.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, classifyOpenAI(ctx, err)
	}

	// Data carries its own index; never trust response order.
	vectors := make([]vectormath.Vector, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, rejected(fmt.Errorf("openai returned out-of-range or duplicate index %d", d.Index))
		}
		vectors[d.Index] = vectormath.FromFloat32(d.Embedding)
	}
	for i, v := range vectors {
		if v == nil {
			return nil, rejected(fmt.Errorf("openai returned no embedding for input %d", i))
		}
	}
	return vectors, nil
}

func classifyOpenAI(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}
	return classifyGeneric(ctx, err)
}
