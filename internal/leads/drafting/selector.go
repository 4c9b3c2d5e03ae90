package drafting

import (
	"regexp"
	"sort"
	"strings"

	"outreach_backend/internal/leads/domain"
	"outreach_backend/platform/apperr"
)

// Hints steer template selection. An explicit TemplateID wins; otherwise
// Tags (industry, intent, signals) are ranked against the catalog.
type Hints struct {
	TemplateID string
	Tags       []string
}

// Draft is the outcome of template selection and placeholder substitution.
// UsedFallback is true when no template matched the hints and the catalog
// default was used, so callers can surface the fallback for auditability.
type Draft struct {
	TemplateID   string `json:"templateId"`
	TemplateName string `json:"templateName"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	UsedFallback bool   `json:"usedFallback"`
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

// Select picks a template for the lead and resolves its placeholders.
// Unresolved placeholders are an error, never silently left blank.
func Select(catalog *Catalog, lead domain.Lead, hints Hints) (Draft, error) {
	template, usedFallback, err := pick(catalog, lead, hints)
	if err != nil {
		return Draft{}, err
	}

	values := placeholderValues(lead)

	subject, missingSubject := substitute(template.Subject, values)
	body, missingBody := substitute(template.Body, values)

	if missing := mergeMissing(missingSubject, missingBody); len(missing) > 0 {
		return Draft{}, domain.MissingPlaceholders(missing)
	}

	return Draft{
		TemplateID:   template.ID,
		TemplateName: template.Name,
		Subject:      subject,
		Body:         body,
		UsedFallback: usedFallback,
	}, nil
}

// pick resolves the template to use. Explicit ids are used verbatim;
// tag hints are ranked by exact tag match count with catalog order as the
// tie-break, falling back to the catalog default when nothing matches.
func pick(catalog *Catalog, lead domain.Lead, hints Hints) (*Template, bool, error) {
	if id := strings.TrimSpace(hints.TemplateID); id != "" {
		template := catalog.ByID(id)
		if template == nil {
			return nil, false, apperr.NotFound("template " + id + " not found")
		}
		return template, false, nil
	}

	tags := normalizeTags(hints.Tags, lead)
	if len(tags) == 0 {
		return catalog.Default(), true, nil
	}

	best := -1
	bestScore := 0
	for i := range catalog.Templates {
		score := tagMatchScore(catalog.Templates[i].Tags, tags)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return catalog.Default(), true, nil
	}
	return &catalog.Templates[best], false, nil
}

func normalizeTags(hintTags []string, lead domain.Lead) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, len(hintTags)+1)

	appendTag := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, tag := range hintTags {
		appendTag(tag)
	}
	appendTag(lead.Industry)

	sort.Strings(tags)
	return tags
}

func tagMatchScore(templateTags, wanted []string) int {
	score := 0
	for _, tag := range templateTags {
		tag = strings.ToLower(tag)
		for _, want := range wanted {
			if tag == want {
				score++
			}
		}
	}
	return score
}

func placeholderValues(lead domain.Lead) map[string]string {
	values := map[string]string{
		"company":  strings.TrimSpace(lead.Company),
		"industry": strings.TrimSpace(lead.Industry),
	}
	if contact := lead.PrimaryContact(); contact != nil {
		values["contact_name"] = strings.TrimSpace(contact.Name)
	}
	return values
}

// substitute resolves placeholders in a single pass. Placeholders with no
// value, and values that are empty, are reported as missing.
func substitute(text string, values map[string]string) (string, []string) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := values[name]
		if !ok || value == "" {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return result, missing
}

func mergeMissing(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, group := range groups {
		for _, name := range group {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}
