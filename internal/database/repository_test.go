package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobscraper/internal/models"
)

func str(s string) *string { return &s }

func TestToStoredJobs(t *testing.T) {
	jobs := []models.JobInformation{
		{JobTitle: str("Backend"), ApplyURL: str("https://boards.greenhouse.io/acme/jobs/1")},
		{JobTitle: str("No link")},
		{JobTitle: str("Empty link"), ApplyURL: str("")},
		{JobTitle: str("Frontend"), CompanyName: str("Acme"), ApplyURL: str("https://boards.greenhouse.io/acme/jobs/2")},
		{JobTitle: str("Backend v2"), ApplyURL: str("https://boards.greenhouse.io/acme/jobs/1")},
	}

	rows := ToStoredJobs("greenhouse", "https://boards.greenhouse.io/acme", jobs)
	require.Len(t, rows, 2)

	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", rows[0].ApplyURL)
	assert.Equal(t, "Backend v2", models.Value(rows[0].Title))
	assert.Equal(t, "greenhouse", rows[0].Source)
	assert.Equal(t, "https://boards.greenhouse.io/acme", rows[0].ListingURL)

	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/2", rows[1].ApplyURL)
	assert.Equal(t, "Acme", models.Value(rows[1].Company))
	assert.Nil(t, rows[1].Desc)
}

func TestToStoredJobsEmpty(t *testing.T) {
	assert.Empty(t, ToStoredJobs("greenhouse", "https://boards.greenhouse.io/acme", nil))
}

// Runs against a real database when TEST_DATABASE_URL is set
func TestRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if testing.Short() || dsn == "" {
		t.Skip("Skipping database test, TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := ConnectDB(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))

	applyURL := "https://boards.greenhouse.io/roundtrip/jobs/" + time.Now().Format("20060102150405.000000")
	saved, err := repo.SaveJobs(ctx, "greenhouse-test", "https://boards.greenhouse.io/roundtrip", []models.JobInformation{
		{JobTitle: str("First"), ApplyURL: str(applyURL)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	_, err = repo.SaveJobs(ctx, "greenhouse-test", "https://boards.greenhouse.io/roundtrip", []models.JobInformation{
		{JobTitle: str("Second"), ApplyURL: str(applyURL)},
	})
	require.NoError(t, err)

	jobs, err := repo.ListJobs(ctx, "greenhouse-test", 50)
	require.NoError(t, err)
	var found []models.StoredJob
	for _, j := range jobs {
		if j.ApplyURL == applyURL {
			found = append(found, j)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, "Second", models.Value(found[0].Title))
}
