package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go-jobscraper/internal/models"
)

const maxScore = 10

// Matcher keeps the jobs that mention an include keyword and none of the
// exclude keywords. Keywords match whole words, case-insensitively.
type Matcher struct {
	include []*regexp.Regexp
	exclude *regexp.Regexp
}

func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}
	for _, kw := range include {
		re, err := keywordRegex(kw)
		if err != nil {
			return nil, err
		}
		if re != nil {
			m.include = append(m.include, re)
		}
	}

	var alts []string
	for _, kw := range exclude {
		if p := keywordPattern(kw); p != "" {
			alts = append(alts, p)
		}
	}
	if len(alts) > 0 {
		re, err := regexp.Compile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude keywords: %w", err)
		}
		m.exclude = re
	}
	return m, nil
}

// keywordPattern quotes kw and lets any whitespace run match its spaces
func keywordPattern(kw string) string {
	fields := strings.Fields(kw)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s+`)
}

func keywordRegex(kw string) (*regexp.Regexp, error) {
	p := keywordPattern(kw)
	if p == "" {
		return nil, nil
	}
	re, err := regexp.Compile(`(?i)\b` + p + `\b`)
	if err != nil {
		return nil, fmt.Errorf("invalid include keyword %q: %w", kw, err)
	}
	return re, nil
}

func jobText(job models.JobInformation) string {
	return models.Value(job.JobTitle) + " " + models.Value(job.JobDescription)
}

func (m *Matcher) ShouldIncludeJob(job models.JobInformation) bool {
	text := jobText(job)
	if m.exclude != nil && m.exclude.MatchString(text) {
		return false
	}
	if len(m.include) == 0 {
		return true
	}
	for _, re := range m.include {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CalculateMatchScore rates a job 0..10: +3 for every include keyword in the
// title and +1 for every one found only in the description
func (m *Matcher) CalculateMatchScore(job models.JobInformation) int {
	title := models.Value(job.JobTitle)
	desc := models.Value(job.JobDescription)

	score := 0
	for _, re := range m.include {
		//title match (+3)
		if re.MatchString(title) {
			score += 3
		} else if re.MatchString(desc) {
			score++
		}
	}

	if score > maxScore {
		return maxScore
	}
	return score
}

// Apply filters jobs and orders them by score, best first. Jobs with equal
// scores keep their relative order.
func (m *Matcher) Apply(jobs []models.JobInformation) []models.JobInformation {
	type scored struct {
		job   models.JobInformation
		score int
	}
	var kept []scored
	for _, job := range jobs {
		if m.ShouldIncludeJob(job) {
			kept = append(kept, scored{job: job, score: m.CalculateMatchScore(job)})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	out := make([]models.JobInformation, len(kept))
	for i, k := range kept {
		out[i] = k.job
	}
	return out
}
