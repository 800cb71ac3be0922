package dict

import (
	"encoding/json"
	"fmt"
)

// The tokenize endpoint has two wire shapes. The primary shape nests
// parsing options:
//
//	[{"content": [[{"text": "熱"}, {"text": "い"}], ...]}, ...]
//
// where every option list forms one lexical unit whose pieces must be
// rejoined (熱 + い = 熱い). The legacy shape is a flat list of token
// arrays or raw strings. Both normalize to one []string here, before any
// business logic sees them.

type parsingOption struct {
	Text string `json:"text"`
}

type tokenizeResult struct {
	Content []json.RawMessage `json:"content"`
}

func decodeTokens(body []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("response is not a list: %w", err)
	}

	tokens := []string{}
	for _, item := range items {
		var result tokenizeResult
		if err := json.Unmarshal(item, &result); err == nil && result.Content != nil {
			tokens = append(tokens, contentTokens(result.Content)...)
			continue
		}
		if tok, ok := legacyToken(item); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func contentTokens(content []json.RawMessage) []string {
	tokens := []string{}
	for _, segment := range content {
		var options []parsingOption
		if err := json.Unmarshal(segment, &options); err != nil {
			continue
		}
		word := ""
		for _, opt := range options {
			word += opt.Text
		}
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func legacyToken(item json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s, s != ""
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(item, &parts); err == nil && len(parts) > 0 {
		var surface string
		if err := json.Unmarshal(parts[0], &surface); err == nil {
			return surface, surface != ""
		}
	}
	return "", false
}
