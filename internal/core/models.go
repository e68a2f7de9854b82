package core

// ModelID identifies one of the review models the service knows how to call.
type ModelID string

const (
	ModelGemini20Flash ModelID = "gemini-2.0-flash"
	ModelGeminiPro     ModelID = "gemini-pro"
	ModelOpenAIGPT35   ModelID = "openai-gpt-3.5"
	ModelOllamaLocal   ModelID = "ollama-local"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = ModelGemini20Flash

// ProviderKind groups models by the wire call they need.
type ProviderKind string

const (
	// KindGenerative is a single-turn generation call with a system instruction.
	KindGenerative ProviderKind = "generative"
	// KindChat is a chat completion call with system and user messages.
	KindChat ProviderKind = "chat"
	// KindLocal is a locally hosted model reached through Ollama.
	KindLocal ProviderKind = "local"
)

var knownModels = []ModelID{
	ModelGemini20Flash,
	ModelGeminiPro,
	ModelOpenAIGPT35,
	ModelOllamaLocal,
}

// KnownModels returns every model identifier the service accepts.
func KnownModels() []ModelID {
	out := make([]ModelID, len(knownModels))
	copy(out, knownModels)
	return out
}

// DefaultFallbackOrder is the static priority list tried after the preferred model.
func DefaultFallbackOrder() []ModelID {
	return []ModelID{ModelGemini20Flash, ModelOpenAIGPT35}
}

// IsKnown reports whether m belongs to the enumerated model set.
func (m ModelID) IsKnown() bool {
	for _, k := range knownModels {
		if k == m {
			return true
		}
	}
	return false
}

// Kind returns the provider family for m. Unknown models return "".
func (m ModelID) Kind() ProviderKind {
	switch m {
	case ModelGemini20Flash, ModelGeminiPro:
		return KindGenerative
	case ModelOpenAIGPT35:
		return KindChat
	case ModelOllamaLocal:
		return KindLocal
	default:
		return ""
	}
}

func (m ModelID) String() string { return string(m) }
