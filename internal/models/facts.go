package models

import "time"

// Closed classification taxonomy for extracted facts. Unknown values coming
// back from the model are never stored as-is; each enum has a documented
// default applied by its Parse function.

// PrimaryType classifies what kind of message this is
type PrimaryType string

const (
	PrimaryTypeUpdate   PrimaryType = "update"
	PrimaryTypeRequest  PrimaryType = "request"
	PrimaryTypeDecision PrimaryType = "decision"
	PrimaryTypeFyi      PrimaryType = "fyi"
)

// ParsePrimaryType maps a raw string to a PrimaryType, defaulting to fyi
func ParsePrimaryType(s string) PrimaryType {
	switch PrimaryType(s) {
	case PrimaryTypeUpdate, PrimaryTypeRequest, PrimaryTypeDecision, PrimaryTypeFyi:
		return PrimaryType(s)
	}
	return PrimaryTypeFyi
}

// Intent classifies what the sender is trying to accomplish
type Intent string

const (
	IntentInform   Intent = "inform"
	IntentAsk      Intent = "ask"
	IntentEscalate Intent = "escalate"
	IntentCommit   Intent = "commit"
	IntentClarify  Intent = "clarify"
	IntentResolve  Intent = "resolve"
)

// ParseIntent maps a raw string to an Intent, defaulting to inform
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentInform, IntentAsk, IntentEscalate, IntentCommit, IntentClarify, IntentResolve:
		return Intent(s)
	}
	return IntentInform
}

// Sentiment classifies the overall tone of the message
type Sentiment string

const (
	SentimentNeutral   Sentiment = "neutral"
	SentimentPositive  Sentiment = "positive"
	SentimentConcerned Sentiment = "concerned"
	SentimentHostile   Sentiment = "hostile"
)

// ParseSentiment maps a raw string to a Sentiment, defaulting to neutral
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentNeutral, SentimentPositive, SentimentConcerned, SentimentHostile:
		return Sentiment(s)
	}
	return SentimentNeutral
}

// Urgency classifies how time-sensitive the message is
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency maps a raw string to an Urgency, defaulting to low
func ParseUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(s)
	}
	return UrgencyLow
}

// WaitingOn identifies which party the next action is waiting on
type WaitingOn string

const (
	WaitingOnMe         WaitingOn = "me"
	WaitingOnThem       WaitingOn = "them"
	WaitingOnThirdParty WaitingOn = "third_party"
	WaitingOnNone       WaitingOn = "none"
)

// ParseWaitingOn maps a raw string to a WaitingOn, defaulting to none
func ParseWaitingOn(s string) WaitingOn {
	switch WaitingOn(s) {
	case WaitingOnMe, WaitingOnThem, WaitingOnThirdParty, WaitingOnNone:
		return WaitingOn(s)
	}
	return WaitingOnNone
}

// Severity grades a risk, issue or blocker
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity maps a raw string to a Severity, defaulting to low
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(s)
	}
	return SeverityLow
}

// Risk is a potential future problem surfaced by a message
type Risk struct {
	Title      string   `json:"title"`
	Details    string   `json:"details"`
	Owner      *string  `json:"owner,omitempty"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// Issue is a problem that already exists
type Issue struct {
	Title      string   `json:"title"`
	Details    string   `json:"details"`
	Owner      *string  `json:"owner,omitempty"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// Blocker is a problem actively preventing progress
type Blocker struct {
	Title      string   `json:"title"`
	Details    string   `json:"details"`
	Owner      *string  `json:"owner,omitempty"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// OpenQuestion is a question raised in a message that has no answer yet
type OpenQuestion struct {
	Question   string     `json:"question"`
	AskedBy    *string    `json:"asked_by,omitempty"`
	Owner      *string    `json:"owner,omitempty"`
	DueBy      *time.Time `json:"due_by,omitempty"`
	Confidence float64    `json:"confidence"`
}

// AnsweredQuestion is a question that was answered within the conversation
type AnsweredQuestion struct {
	Question      string  `json:"question"`
	AnswerSummary string  `json:"answer_summary"`
	Confidence    float64 `json:"confidence"`
}

// Provenance records which model produced an extraction
type Provenance struct {
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExtractedFact holds the structured facts extracted from one message,
// keyed one-to-one by the message's relational row id
type ExtractedFact struct {
	MessageID         int64              `json:"message_id"`
	PrimaryType       PrimaryType        `json:"primary_type"`
	Intent            Intent             `json:"intent"`
	Urgency           Urgency            `json:"urgency"`
	Sentiment         Sentiment          `json:"sentiment"`
	WaitingOn         WaitingOn          `json:"waiting_on"`
	DueBy             *time.Time         `json:"due_by,omitempty"`
	NeedsResponse     bool               `json:"needs_response"`
	Summary           string             `json:"summary"`
	KeyPoints         []string           `json:"key_points"`
	Risks             []Risk             `json:"risks"`
	Issues            []Issue            `json:"issues"`
	Blockers          []Blocker          `json:"blockers"`
	OpenQuestions     []OpenQuestion     `json:"open_questions"`
	AnsweredQuestions []AnsweredQuestion `json:"answered_questions"`
	Confidence        float64            `json:"confidence"`
	Provenance        Provenance         `json:"provenance"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ClampConfidence bounds a confidence score to [0, 1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
