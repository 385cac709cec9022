package registry

import (
	"context"
	"strings"
	"time"

	"modeld/pkg/types"
)

func init() {
	RegisterInterfaceMode(baseInterface{})
}

// baseInterface grounds directly on the original system's BaseInterface:
// shallow liveness check, then a one-token completion as the functionality
// probe, and a validate step that rejects chat-completions paths.
type baseInterface struct{}

func (baseInterface) Mode() types.Mode { return types.ModeBase }

func (baseInterface) Health(ctx context.Context, port int, _ time.Time, timeout time.Duration) (bool, string) {
	body := []byte(`{"model":"health-probe","prompt":"hello","max_tokens":1,"stream":false}`)
	return twoPhaseHealth(ctx, port, timeout, "v1/completions", body)
}

func (baseInterface) Endpoints() []string { return []string{"v1/completions"} }

func (baseInterface) Validate(path, modelName string) (bool, string) {
	if strings.Contains(path, "v1/chat/completions") {
		return false, "model '" + modelName + "' is Base mode, does not support chat completions"
	}
	if strings.Contains(path, "v1/completions") {
		return true, ""
	}
	return false, "model '" + modelName + "' is Base mode, does not support " + path
}
