package registry

import (
	"context"
	"strings"
	"time"

	"modeld/pkg/types"
)

func init() {
	RegisterInterfaceMode(chatInterface{})
}

type chatInterface struct{}

func (chatInterface) Mode() types.Mode { return types.ModeChat }

func (chatInterface) Health(ctx context.Context, port int, _ time.Time, timeout time.Duration) (bool, string) {
	body := []byte(`{"model":"health-probe","messages":[{"role":"user","content":"hi"}],"max_tokens":1,"stream":false}`)
	return twoPhaseHealth(ctx, port, timeout, "v1/chat/completions", body)
}

func (chatInterface) Endpoints() []string { return []string{"v1/chat/completions"} }

func (chatInterface) Validate(path, modelName string) (bool, string) {
	if strings.Contains(path, "v1/chat/completions") {
		return true, ""
	}
	return false, "model '" + modelName + "' is Chat mode, does not support " + path
}
