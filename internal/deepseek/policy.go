package deepseek

import (
	"strings"

	"dsbridge/internal/apiclient"
	"dsbridge/internal/core"
)

const (
	// DefaultModel is the standard chat model, used when a completion call
	// arrives without a model and as the default fallback target.
	DefaultModel = "deepseek-chat"

	// ReasonerModel is the distinguished reasoning model. Only calls that
	// requested exactly this model are eligible for the chat fallback.
	ReasonerModel = "deepseek-reasoner"
)

// retriableStatusCodes are the HTTP statuses that make a failed reasoner call
// eligible for the model-substitution fallback.
var retriableStatusCodes = map[int]bool{
	408: true,
	409: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// betaHintTokens are the substrings (matched case-insensitively against the
// upstream error message) that signal the completions endpoint wants the
// /beta base path.
var betaHintTokens = []string{"beta", "base url", "base_url", "/beta"}

// ShouldReasonerFallback decides whether a failed chat completion should be
// reissued once with the fallback model substituted. Pure function over the
// call metadata and the structured error.
func ShouldReasonerFallback(enabled bool, model, fallbackModel string, apiErr *core.APIError) bool {
	if !enabled {
		return false
	}
	if model != ReasonerModel {
		return false
	}
	if fallbackModel == "" || fallbackModel == model {
		return false
	}
	if !apiErr.HasStatus() {
		// Transport-level failure before any status: worth one more attempt.
		return true
	}
	return retriableStatusCodes[apiErr.Status]
}

// ShouldRetryOnBeta decides whether a failed legacy completion should be
// reissued once against the beta base URL. The trigger is a message
// heuristic: the upstream rejects non-beta completion calls with an error
// that names the beta base.
func ShouldRetryOnBeta(apiErr *core.APIError) bool {
	message := strings.ToLower(apiErr.Message)
	for _, token := range betaHintTokens {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// BetaBaseURL returns the beta base URL for the given base. Idempotent: a
// base already ending in /beta is returned unchanged.
func BetaBaseURL(base string) string {
	normalized := apiclient.NormalizeBaseURL(base)
	if strings.HasSuffix(normalized, "/beta") {
		return normalized
	}
	return normalized + "/beta"
}
