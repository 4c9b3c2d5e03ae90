// Package triage classifies inbound reply text into a closed intent set
// and suggests a reply from the playbook mapped to that intent.
package triage

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intent labels form a closed set; LabelUncategorized is the fallback when
// no category matches.
const (
	LabelUnsubscribe   = "unsubscribe"
	LabelNotInterested = "not_interested"
	LabelOutOfOffice   = "out_of_office"
	LabelInterested    = "interested"
	LabelNeedsInfo     = "needs_info"
	LabelUncategorized = "uncategorized"
)

//go:embed playbook.yaml
var playbookYAML []byte

type category struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

type playbook struct {
	Categories []category `yaml:"categories"`
	Fallback   struct {
		Label string `yaml:"label"`
		Reply string `yaml:"reply"`
	} `yaml:"fallback"`
}

// Classification is the result of triaging one inbound reply. It is never
// persisted, only returned to the caller.
type Classification struct {
	Intent         string `json:"intent"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
	SuggestedReply string `json:"suggestedReply"`
}

// Classifier matches inbound text against the ordered playbook categories.
type Classifier struct {
	playbook playbook
}

// NewClassifier parses the embedded playbook.
func NewClassifier() (*Classifier, error) {
	var pb playbook
	if err := yaml.Unmarshal(playbookYAML, &pb); err != nil {
		return nil, fmt.Errorf("parse reply playbook: %w", err)
	}
	if len(pb.Categories) == 0 {
		return nil, fmt.Errorf("reply playbook has no categories")
	}
	if pb.Fallback.Label == "" {
		return nil, fmt.Errorf("reply playbook has no fallback label")
	}
	return &Classifier{playbook: pb}, nil
}

// Classify matches the text against each category in playbook order; the
// first category containing a matching phrase wins. The text is treated as
// an opaque string, never evaluated as markup or code. Company personalizes
// the suggested reply and may be empty.
func (c *Classifier) Classify(text, company string) Classification {
	lowered := strings.ToLower(text)

	for _, cat := range c.playbook.Categories {
		for _, keyword := range cat.Keywords {
			if strings.Contains(lowered, keyword) {
				return Classification{
					Intent:         cat.Label,
					MatchedKeyword: keyword,
					SuggestedReply: personalize(cat.Reply, company),
				}
			}
		}
	}

	return Classification{
		Intent:         c.playbook.Fallback.Label,
		SuggestedReply: personalize(c.playbook.Fallback.Reply, company),
	}
}

// Labels returns the closed label set in evaluation order, fallback last.
func (c *Classifier) Labels() []string {
	labels := make([]string, 0, len(c.playbook.Categories)+1)
	for _, cat := range c.playbook.Categories {
		labels = append(labels, cat.Label)
	}
	return append(labels, c.playbook.Fallback.Label)
}

func personalize(reply, company string) string {
	company = strings.TrimSpace(company)
	if company == "" {
		company = "your company"
	}
	return strings.TrimSpace(strings.ReplaceAll(reply, "{{company}}", company))
}
