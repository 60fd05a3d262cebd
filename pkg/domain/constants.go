package domain

// GenericErrorReply is the single user-facing failure message. Every surface
// (CLI loop, one-shot command, browser widget) shows exactly this line when a
// dispatch fails; the underlying cause goes to the structured log only.
const GenericErrorReply = "Sorry, there was an error processing your request."

// DefaultMaxTokens is the completion token limit used when none is configured.
const DefaultMaxTokens = 1000

// DefaultMaxToolRounds caps how many tool round trips one dispatch may make.
const DefaultMaxToolRounds = 25
