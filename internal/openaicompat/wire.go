package openaicompat

import (
	"encoding/json"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/respjson"
	"github.com/openai/openai-go/v3/shared"

	"chatbridge/internal/lm"
)

// present reports whether a field was sent with a non-null value. Fields the
// openai types do not declare land in ExtraFields without a typed decoder and
// never report Valid, so their raw text is checked instead.
func present(f respjson.Field) bool {
	raw := f.Raw()
	return raw != respjson.Omitted && raw != respjson.Null
}

// providerError returns the vendor error envelope carried in a body that
// otherwise looks like a completion or chunk, or nil.
func providerError(extra map[string]respjson.Field, raw []byte) *lm.ProviderError {
	field, ok := extra["error"]
	if !ok || !present(field) {
		return nil
	}
	var obj shared.ErrorObject
	if err := json.Unmarshal([]byte(field.Raw()), &obj); err != nil {
		return &lm.ProviderError{Message: field.Raw(), Raw: append([]byte(nil), raw...)}
	}
	return &lm.ProviderError{
		Message: obj.Message,
		Type:    obj.Type,
		Code:    obj.Code,
		Raw:     append([]byte(nil), raw...),
	}
}

func toUsage(u openai.CompletionUsage) lm.Usage {
	return lm.Usage{PromptTokens: int(u.PromptTokens), CompletionTokens: int(u.CompletionTokens)}
}

func createdTime(unix int64) time.Time {
	if unix <= 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
