package llm

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know, which covers
// every non-OpenAI model routed through OpenRouter.
const fallbackEncoding = "cl100k_base"

// CountTokens estimates the number of tokens text occupies for model.
// The estimate is exact for OpenAI models and approximate for others.
func CountTokens(model, text string) (int, error) {
	name := model
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	tkm, err := tiktoken.EncodingForModel(name)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("failed to load token encoding: %w", err)
		}
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
