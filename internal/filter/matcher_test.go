package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobscraper/internal/models"
)

func job(title, desc string) models.JobInformation {
	return models.JobInformation{JobTitle: &title, JobDescription: &desc}
}

func TestShouldIncludeJob(t *testing.T) {
	m, err := NewMatcher([]string{"golang", "go developer"}, []string{"senior", "staff"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		job      models.JobInformation
		expected bool
	}{
		{name: "title keyword", job: job("Golang Engineer", ""), expected: true},
		{name: "multi word keyword", job: job("Backend", "We need a Go   Developer"), expected: true},
		{name: "no keyword", job: job("Rust Engineer", "systems"), expected: false},
		{name: "partial word", job: job("Golangish", ""), expected: false},
		{name: "excluded", job: job("Senior Golang Engineer", ""), expected: false},
		{name: "excluded in description", job: job("Golang Engineer", "Staff level role"), expected: false},
		{name: "null fields", job: models.JobInformation{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.ShouldIncludeJob(tt.job))
		})
	}
}

func TestNoIncludeKeywordsKeepsEverything(t *testing.T) {
	m, err := NewMatcher(nil, []string{"intern"})
	require.NoError(t, err)

	assert.True(t, m.ShouldIncludeJob(job("Anything", "")))
	assert.True(t, m.ShouldIncludeJob(models.JobInformation{}))
	assert.False(t, m.ShouldIncludeJob(job("Intern", "")))
}

func TestCalculateMatchScore(t *testing.T) {
	m, err := NewMatcher([]string{"golang", "kubernetes", "docker", "grpc"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		job      models.JobInformation
		expected int
	}{
		{name: "title and description", job: job("Golang Developer", "Docker, Kubernetes"), expected: 5},
		{name: "description only", job: job("Engineer", "golang"), expected: 1},
		{name: "capped", job: job("Golang Kubernetes Docker gRPC", ""), expected: 10},
		{name: "nothing", job: job("Designer", "Figma"), expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.CalculateMatchScore(tt.job))
		})
	}
}

func TestApplySortsByScore(t *testing.T) {
	m, err := NewMatcher([]string{"golang", "docker"}, []string{"senior"})
	require.NoError(t, err)

	jobs := []models.JobInformation{
		job("Engineer A", "golang"),
		job("Senior Golang", "docker"),
		job("Golang Docker", ""),
		job("Engineer B", "golang"),
		job("Designer", ""),
	}
	got := m.Apply(jobs)

	var titles []string
	for _, j := range got {
		titles = append(titles, models.Value(j.JobTitle))
	}
	assert.Equal(t, []string{"Golang Docker", "Engineer A", "Engineer B"}, titles)
}

func TestNewMatcherIgnoresBlankKeywords(t *testing.T) {
	m, err := NewMatcher([]string{"", "  "}, []string{" "})
	require.NoError(t, err)
	assert.True(t, m.ShouldIncludeJob(job("Anything", "")))
}
