// Package quote produces the one-line motivational text used as
// notification bodies. The real source is a hosted text-generation API;
// every caller must be prepared for it to fail and use Fallback instead.
package quote

import "context"

// Generator produces a single line of text for a prompt. Implementations
// must respect ctx cancellation and return promptly on failure: the
// dispatch path treats any error as "use the fallback", never as fatal.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Prompt is the instruction sent for every reminder body. Kept generic
// on purpose: task context goes in the notification title, not the quote.
const Prompt = "Write one short motivational line for someone working " +
	"through a timed daily schedule. Direct and energetic, normal sentence " +
	"case. Output only the line itself, plain text, no quotes or attribution."

// Static fallback bodies per milestone, used whenever generation fails.
const (
	FallbackStart    = "Time to begin!"
	FallbackEnd      = "Great work, wrap it up!"
	FallbackPeriodic = "Focus time!"
)
