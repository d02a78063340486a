// Package generator calls an OpenRouter-compatible chat completion API to
// turn discovered articles into tweet candidates with impact and quality
// scores. Responses are requested as JSON; code fences and surrounding prose
// in model output are tolerated. Transient HTTP failures and rate limits
// retry with exponential backoff.
package generator
