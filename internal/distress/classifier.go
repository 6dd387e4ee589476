package distress

import "strings"

// DefaultSentimentThreshold is the score below which a confirmed verdict is
// flagged as elevated priority.
const DefaultSentimentThreshold = -0.5

// FailureKind identifies why a verdict could not be reached.
type FailureKind string

const (
	// FailureNone marks a verdict produced by classification.
	FailureNone FailureKind = ""
	// FailureUpstreamUnavailable marks a transcription service that could not be reached or failed.
	FailureUpstreamUnavailable FailureKind = "upstream_unavailable"
	// FailureEmptyResult marks a transcription response without a transcript.
	FailureEmptyResult FailureKind = "empty_result"
)

// EmptyResponse is the error text carried by verdicts for empty upstream results.
const EmptyResponse = "Empty response"

// Verdict summarises whether distress is confirmed and why.
//
// A non-empty Error means the analysis was inconclusive, not that no distress
// was present.
type Verdict struct {
	Confirmed        bool
	MatchedKeywords  []string
	SentimentScore   float64
	ElevatedPriority bool
	Error            string
	Failure          FailureKind
}

// Inconclusive reports whether the verdict carries an upstream failure.
func (v Verdict) Inconclusive() bool {
	return v.Failure != FailureNone || v.Error != ""
}

// Inconclusive builds the verdict returned when classification could not run.
func Inconclusive(kind FailureKind, reason string) Verdict {
	return Verdict{
		MatchedKeywords: []string{},
		Error:           reason,
		Failure:         kind,
	}
}

// Classifier matches transcripts against a fixed keyword set.
// It holds no mutable state and may be shared across goroutines.
type Classifier struct {
	keywords  KeywordSet
	threshold float64
}

// NewClassifier returns a classifier over keywords. A confirmed verdict whose
// sentiment score is below threshold is marked elevated priority.
func NewClassifier(keywords KeywordSet, threshold float64) *Classifier {
	return &Classifier{keywords: keywords, threshold: threshold}
}

// Keywords returns the keyword set the classifier matches against.
func (c *Classifier) Keywords() KeywordSet {
	return c.keywords
}

// Threshold returns the elevated-priority sentiment threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scans transcript for every keyword as a case-insensitive substring.
// Matches are listed in sorted keyword order. sentimentScore may be nil when the
// provider returned none.
func (c *Classifier) Classify(transcript string, sentimentScore *float64) Verdict {
	text := normalize(transcript)

	matches := make([]string, 0)
	if text != "" {
		for _, k := range c.keywords.phrases {
			if strings.Contains(text, k) {
				matches = append(matches, k)
			}
		}
	}

	v := Verdict{
		Confirmed:       len(matches) > 0,
		MatchedKeywords: matches,
	}
	if sentimentScore != nil {
		v.SentimentScore = *sentimentScore
		// Elevation affects downstream signalling only, never Confirmed.
		v.ElevatedPriority = v.Confirmed && *sentimentScore < c.threshold
	}
	return v
}
