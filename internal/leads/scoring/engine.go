// Package scoring evaluates lead profiles against a fixed, ordered rule set.
// The engine is pure: identical input always produces the identical score
// and the identical reason ordering.
package scoring

import (
	"fmt"
	"strings"

	"outreach_backend/internal/leads/domain"
)

const (
	// AutoQualifyThreshold is the score at or above which a new lead is
	// promoted to qualified automatically after scoring.
	AutoQualifyThreshold = 70

	minScore = 0
	maxScore = 100

	minIdealEmployees  = 10
	maxIdealEmployees  = 200
	smallTeamThreshold = 5
)

// Result is the outcome of scoring a single lead.
type Result struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// targetIndustries are the markets the outreach program serves.
var targetIndustries = []string{
	"saas",
	"software",
	"technology",
	"fintech",
	"e-commerce",
	"ecommerce",
	"logistics",
	"supply chain",
	"consumer goods",
	"professional services",
	"manufacturing",
	"media",
	"marketing",
	"hospitality",
}

// regulatedIndustries are lower-priority sectors with longer sales cycles.
var regulatedIndustries = []string{"healthcare", "real estate"}

// favorableStages are funding stages that indicate an established,
// still-growing company.
var favorableStages = []string{"seed", "series a", "series b", "series c", "growth"}

var usStateNames = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york",
	"north carolina", "north dakota", "ohio", "oklahoma", "oregon",
	"pennsylvania", "rhode island", "south carolina", "south dakota",
	"tennessee", "texas", "utah", "vermont", "virginia", "washington",
	"west virginia", "wisconsin", "wyoming", "district of columbia",
	"united states", "usa",
}

// usStateCodes are matched as whole tokens only. Substring matching on
// two-letter codes misfires on cities like Dublin ("in") or Paris ("ar").
var usStateCodes = map[string]struct{}{
	"al": {}, "ak": {}, "az": {}, "ar": {}, "ca": {}, "co": {}, "ct": {},
	"de": {}, "fl": {}, "ga": {}, "hi": {}, "id": {}, "il": {}, "in": {},
	"ia": {}, "ks": {}, "ky": {}, "la": {}, "me": {}, "md": {}, "ma": {},
	"mi": {}, "mn": {}, "ms": {}, "mo": {}, "mt": {}, "ne": {}, "nv": {},
	"nh": {}, "nj": {}, "nm": {}, "ny": {}, "nc": {}, "nd": {}, "oh": {},
	"ok": {}, "or": {}, "pa": {}, "ri": {}, "sc": {}, "sd": {}, "tn": {},
	"tx": {}, "ut": {}, "vt": {}, "va": {}, "wa": {}, "wv": {}, "wi": {},
	"wy": {}, "dc": {}, "us": {},
}

// strongNeedSignals mark an explicit, current operational need in notes.
var strongNeedSignals = []string{
	"hot lead",
	"strong lead",
	"needs procurement",
	"needs supply",
	"needs operations",
	"needs ops",
	"needs strategy",
	"needs logistics",
	"needs project manager",
	"needs coordinator",
	"needs director",
	"needs manager",
	"urgent need",
	"immediate need",
}

// opsKeywords are weaker operational context signals.
var opsKeywords = []string{
	"operations",
	"scaling",
	"scale",
	"growth",
	"growing",
	"expand",
	"expansion",
	"coordinator",
	"looking for",
}

var founderLedSignals = []string{
	"founder-led",
	"founder led",
	"founder owned",
	"owner-operated",
	"owner operated",
	"founder still doing",
	"founder runs",
	"founder bottleneck",
	"outpaced",
	"outgrown",
	"no systems",
	"no infrastructure",
	"lacks infrastructure",
}

var burnoutSignals = []string{
	"60+ hours",
	"60 hours",
	"70 hours",
	"80 hours",
	"burnout",
	"burned out",
	"burnt out",
	"wearing all hats",
	"wearing every hat",
	"can't delegate",
	"cannot delegate",
	"stretched thin",
	"stretched too thin",
	"overwhelmed founder",
}

var earlyStageSignals = []string{
	"pre-revenue",
	"pre revenue",
	"no revenue",
	"idea stage",
	"concept stage",
	"pre-launch",
	"pre launch",
	"not yet launched",
	"just starting",
	"just launched",
	"newly launched",
}

var earlyStageFunding = []string{"pre-seed", "pre seed", "pre-revenue", "idea", "concept"}

var lifestyleSignals = []string{
	"lifestyle business",
	"lifestyle brand",
	"solopreneur",
	"solo business",
	"one-person shop",
	"one person shop",
	"freelancer",
	"self-employed",
	"hobby business",
	"side project",
	"side hustle",
	"part-time business",
}

var notAFitSignals = []string{
	"not a fit",
	"not interested",
	"no immediate need",
	"no operational need",
	"no plans to hire",
	"no need for",
	"no overlap",
	"downsizing",
	"laying off",
	"restructuring",
}

// Score evaluates the lead against the rule set in fixed order. Each rule
// that fires contributes its points and appends one reason; the sum is
// clamped to [0,100].
func Score(lead domain.Lead) Result {
	score := 0
	reasons := make([]string, 0, 8)

	notes := notesText(lead)

	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if industryMatches(lead.Industry) {
		add(20, fmt.Sprintf("Industry %q matches the target market list (+20)", lead.Industry))
	}

	if locationInPrimaryMarket(lead.Location) {
		add(10, fmt.Sprintf("Location %q is in a primary market (+10)", lead.Location))
	}

	if lead.Employees != nil && *lead.Employees >= minIdealEmployees && *lead.Employees <= maxIdealEmployees {
		add(15, fmt.Sprintf("Employee count %d is in the ideal range (+15)", *lead.Employees))
	}

	if stageFavorable(lead.FundingStage) {
		add(10, fmt.Sprintf("Funding stage %q is favorable (+10)", lead.FundingStage))
	}

	if hasDiscoverableContact(lead) {
		add(10, "Has a discoverable contact with an email address (+10)")
	}

	if strings.TrimSpace(lead.Website) != "" {
		add(5, "Website present (+5)")
	}

	if matchesAny(notes, strongNeedSignals) {
		add(10, "Notes show an explicit operational need (+10)")
	} else if matchesAny(notes, opsKeywords) {
		add(5, "Notes reference operational activity and scaling context (+5)")
	}

	if matchesAny(notes, founderLedSignals) {
		add(10, "Founder-led business showing signs of outpaced infrastructure (+10)")
	}

	if matchesAny(notes, burnoutSignals) {
		add(5, "Founder burnout risk signals in notes (+5)")
	}

	if earlyStage(lead, notes) {
		add(-20, "Early-stage or pre-revenue company (-20)")
	}

	if lead.Employees != nil && *lead.Employees < smallTeamThreshold {
		add(-15, fmt.Sprintf("Small team (%d employees) below minimum scale threshold (-15)", *lead.Employees))
	}

	if matchesAny(strings.ToLower(lead.Industry), regulatedIndustries) {
		add(-10, fmt.Sprintf("Regulated industry %q adds complexity and longer sales cycles (-10)", lead.Industry))
	}

	if matchesAny(notes, lifestyleSignals) {
		add(-15, "Lifestyle or solo operation (-15)")
	}

	if matchesAny(notes, notAFitSignals) {
		add(-15, "Notes indicate the lead is not a current fit (-15)")
	}

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "No scoring criteria matched, needs manual review")
	}

	return Result{Score: score, Reasons: reasons}
}

func notesText(lead domain.Lead) string {
	return strings.ToLower(strings.TrimSpace(lead.Notes + " " + lead.Description))
}

func matchesAny(text string, signals []string) bool {
	if text == "" {
		return false
	}
	for _, signal := range signals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}

func industryMatches(industry string) bool {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return false
	}
	for _, target := range targetIndustries {
		if strings.Contains(industry, target) || strings.Contains(target, industry) {
			return true
		}
	}
	return false
}

func stageFavorable(stage string) bool {
	stage = strings.ToLower(strings.TrimSpace(stage))
	if stage == "" {
		return false
	}
	for _, early := range earlyStageFunding {
		if strings.Contains(stage, early) {
			return false
		}
	}
	for _, favorable := range favorableStages {
		if strings.Contains(stage, favorable) {
			return true
		}
	}
	return false
}

func locationInPrimaryMarket(location string) bool {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return false
	}

	if strings.Contains(location, "dubai") || strings.Contains(location, "uae") {
		return true
	}

	for _, name := range usStateNames {
		if strings.Contains(location, name) {
			return true
		}
	}

	for _, token := range strings.FieldsFunc(location, func(r rune) bool {
		return r == ',' || r == ' ' || r == '.' || r == '(' || r == ')'
	}) {
		if _, ok := usStateCodes[token]; ok {
			return true
		}
	}

	return false
}

func hasDiscoverableContact(lead domain.Lead) bool {
	for _, contact := range lead.Contacts {
		if strings.TrimSpace(contact.Email) != "" {
			return true
		}
	}
	return false
}

func earlyStage(lead domain.Lead, notes string) bool {
	if matchesAny(notes, earlyStageSignals) {
		return true
	}
	return matchesAny(strings.ToLower(lead.FundingStage), earlyStageFunding)
}
