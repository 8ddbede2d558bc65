package core

// DecisionKind discriminates the resolved outcome of one THINKING step.
type DecisionKind int

const (
	// DecisionFinalAnswer marks plain assistant text addressed to the user.
	DecisionFinalAnswer DecisionKind = iota
	// DecisionToolInvocation marks a detected tool call (structured or
	// extracted from free text).
	DecisionToolInvocation
	// DecisionMalformed marks text that looks like a tool call but cannot be
	// executed as one. It is never forwarded to the user as an answer.
	DecisionMalformed
)

// Decision is the discriminated variant produced once per THINKING step so
// downstream code never re-inspects raw model text.
type Decision struct {
	Kind DecisionKind
	// Answer holds the final answer text when Kind is DecisionFinalAnswer.
	Answer string
	// Call holds the detected invocation when Kind is DecisionToolInvocation.
	Call *ToolCall
	// Raw holds the offending text when Kind is DecisionMalformed.
	Raw string
}

// FinalAnswer builds a final-answer decision.
func FinalAnswer(text string) Decision {
	return Decision{Kind: DecisionFinalAnswer, Answer: text}
}

// ToolInvocation builds a tool-invocation decision.
func ToolInvocation(call ToolCall) Decision {
	c := call
	return Decision{Kind: DecisionToolInvocation, Call: &c}
}

// Malformed builds a malformed-call decision carrying the raw text.
func Malformed(raw string) Decision {
	return Decision{Kind: DecisionMalformed, Raw: raw}
}
