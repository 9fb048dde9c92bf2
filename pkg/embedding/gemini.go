package embedding

import (
	"context"
	"errors"
	"fmt"

	"dishdash/pkg/vectormath"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// geminiMaxBatch is the BatchEmbedContents request limit.
const geminiMaxBatch = 100

// GeminiProvider implements Provider with Google's embedding models.
type GeminiProvider struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	modelName string
	dimension int
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dimension int) (*GeminiProvider, error) {
	if model == "" {
		model = "text-embedding-004"
	}
	if dimension <= 0 {
		dimension = 768
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	em := client.EmbeddingModel(model)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	return &GeminiProvider{
		client:    client,
		model:     em,
		modelName: model,
		dimension: dimension,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return fmt.Sprintf("gemini:%s:%d", g.modelName, g.dimension)
}

func (g *GeminiProvider) Dimension() int { return g.dimension }

func (g *GeminiProvider) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	if err := validateTexts([]string{text}); err != nil {
		return nil, err
	}

	res, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, classifyGemini(ctx, err)
	}
	if res == nil || res.Embedding == nil {
		return nil, rejected(errors.New("gemini returned an empty embedding"))
	}

	v := vectormath.FromFloat32(res.Embedding.Values)
	if err := checkBatch([]string{text}, []vectormath.Vector{v}, g.dimension); err != nil {
		return nil, err
	}
	return v, nil
}

func (g *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	out := make([]vectormath.Vector, 0, len(texts))
	for _, part := range chunk(texts, geminiMaxBatch) {
		batch := g.model.NewBatch()
		for _, t := range part {
			batch.AddContent(genai.Text(t))
		}

		res, err := g.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, classifyGemini(ctx, err)
		}
		if len(res.Embeddings) != len(part) {
			return nil, rejected(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(part), len(res.Embeddings)))
		}
		for _, e := range res.Embeddings {
			if e == nil {
				return nil, rejected(errors.New("gemini returned an empty embedding"))
			}
			out = append(out, vectormath.FromFloat32(e.Values))
		}
	}

	if err := checkBatch(texts, out, g.dimension); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GeminiProvider) Close() error {
	return g.client.Close()
}

func classifyGemini(ctx context.Context, err error) error {
	ae, ok := apierror.FromError(err)
	if !ok {
		return classifyGeneric(ctx, err)
	}
	if code := ae.HTTPCode(); code > 0 {
		return classifyStatus(code, err)
	}

	switch ae.GRPCStatus().Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied,
		codes.Unauthenticated, codes.NotFound, codes.OutOfRange, codes.Unimplemented:
		return rejected(err)
	default:
		return transient(err)
	}
}
