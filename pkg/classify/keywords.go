package classify

// ProblemTerms flags posts describing a service issue.
var ProblemTerms = []string{
	"outage", "down", "not working", "broken", "issue", "problem",
	"slow", "buffering", "disconnected", "billing error", "overcharged",
	"technician", "appointment", "cancel", "refund", "complaint",
}

// NegativeTerms and PositiveTerms drive the sentiment hint.
var NegativeTerms = []string{
	"angry", "frustrated", "terrible", "worst", "hate", "awful", "scam", "rip off",
}

var PositiveTerms = []string{
	"great", "excellent", "amazing", "love", "perfect", "fantastic", "recommend",
}

// UrgentTerms escalate the urgency level.
var UrgentTerms = []string{
	"emergency", "urgent", "asap", "immediately", "critical", "outage",
}

// ServiceVocabulary is the fixed keyword set tracked in trend buckets.
// Extraction order follows this list.
var ServiceVocabulary = []string{
	"internet", "wifi", "slow", "speed", "outage", "down", "billing",
	"bill", "charge", "payment", "technician", "appointment", "cable",
	"tv", "modem", "router", "customer service", "support",
}
