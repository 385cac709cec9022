package registry

import (
	"context"
	"strings"
	"time"

	"modeld/pkg/types"
)

func init() {
	RegisterInterfaceMode(embeddingInterface{})
}

type embeddingInterface struct{}

func (embeddingInterface) Mode() types.Mode { return types.ModeEmbedding }

func (embeddingInterface) Health(ctx context.Context, port int, _ time.Time, timeout time.Duration) (bool, string) {
	body := []byte(`{"model":"health-probe","input":"hi"}`)
	return twoPhaseHealth(ctx, port, timeout, "v1/embeddings", body)
}

func (embeddingInterface) Endpoints() []string { return []string{"v1/embeddings"} }

func (embeddingInterface) Validate(path, modelName string) (bool, string) {
	if strings.Contains(path, "v1/embeddings") {
		return true, ""
	}
	return false, "model '" + modelName + "' is Embedding mode, does not support " + path
}
