// Package classifier decides whether an inbound message looks like a scam.
package classifier

import (
	"fmt"
	"strings"
)

const (
	ScamWarning    = "⚠ This message looks suspicious. Do NOT share OTP/passwords."
	SafeWarning    = "✔ This message appears safe."
	UnknownWarning = "Sorry, we could not analyze this message."

	KeywordExplanation = "Detected using keyword rules."
)

// DefaultKeywords are matched as case-insensitive substrings, so "wiring" matches "wire"
var DefaultKeywords = []string{
	"otp", "urgent", "bank", "blocked", "verify",
	"password", "transfer", "account", "click", "wire",
}

// Analysis is the verdict for one message. IsScam is nil when the message
// could not be analyzed.
type Analysis struct {
	IsScam      *bool  `json:"is_scam"`
	Warning     string `json:"warning"`
	Explanation string `json:"explanation"`
}

// Flagged reports whether the message was positively identified as a scam
func (a Analysis) Flagged() bool {
	return a.IsScam != nil && *a.IsScam
}

// Classifier is implemented by anything that can judge a message.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(text string) (Analysis, error)
}

// Analyze runs 'c' against 'text' and never fails; errors and panics are
// turned into an unknown verdict carrying the error as the explanation.
func Analyze(c Classifier, text string) (analysis Analysis) {
	defer func() {
		if r := recover(); r != nil {
			analysis = unknown(fmt.Errorf("%v", r))
		}
	}()

	if c == nil {
		return unknown(fmt.Errorf("no classifier configured"))
	}

	analysis, err := c.Classify(text)
	if err != nil {
		return unknown(err)
	}

	return analysis
}

func unknown(err error) Analysis {
	return Analysis{IsScam: nil, Warning: UnknownWarning, Explanation: err.Error()}
}

// KeywordClassifier flags any message containing one of its keywords
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier uses DefaultKeywords when 'keywords' is empty
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	cleaned := []string{}
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}

	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultKeywords...)
	}

	return &KeywordClassifier{keywords: cleaned}
}

func (kc *KeywordClassifier) Classify(text string) (Analysis, error) {
	lower := strings.ToLower(text)

	isScam := false
	for _, keyword := range kc.keywords {
		if strings.Contains(lower, keyword) {
			isScam = true
			break
		}
	}

	warning := SafeWarning
	if isScam {
		warning = ScamWarning
	}

	return Analysis{IsScam: &isScam, Warning: warning, Explanation: KeywordExplanation}, nil
}

// Keywords returns a copy of the keywords in use
func (kc *KeywordClassifier) Keywords() []string {
	return append([]string{}, kc.keywords...)
}
