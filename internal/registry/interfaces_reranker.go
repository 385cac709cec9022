package registry

import (
	"context"
	"strings"
	"time"

	"modeld/pkg/types"
)

func init() {
	RegisterInterfaceMode(rerankerInterface{})
}

type rerankerInterface struct{}

func (rerankerInterface) Mode() types.Mode { return types.ModeReranker }

func (rerankerInterface) Health(ctx context.Context, port int, _ time.Time, timeout time.Duration) (bool, string) {
	body := []byte(`{"model":"health-probe","query":"hi","documents":["hi"]}`)
	return twoPhaseHealth(ctx, port, timeout, "v1/rerank", body)
}

func (rerankerInterface) Endpoints() []string { return []string{"v1/rerank"} }

func (rerankerInterface) Validate(path, modelName string) (bool, string) {
	if strings.Contains(path, "v1/rerank") {
		return true, ""
	}
	return false, "model '" + modelName + "' is Reranker mode, does not support " + path
}
