//go:build integration

// Package testutil provides database helpers for integration tests.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"outreach/internal/db"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// connString returns TEST_DATABASE_URL when set. Otherwise a postgres
// container is started once per test binary and shared; Ryuk removes it
// when the binary exits.
func connString(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ctr, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("outreach_test"),
			postgres.WithUsername("outreach"),
			postgres.WithPassword("outreach"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerURL, containerErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})
	if containerErr != nil {
		t.Fatalf("failed to start postgres container: %v", containerErr)
	}
	return containerURL
}

// TestDB connects to a migrated test database. Every outreach table is
// emptied when the test finishes.
func TestDB(t *testing.T) *db.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	url := connString(t)
	ctx := context.Background()

	database, err := db.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(url); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		cleanupTestData(ctx, database)
		database.Close()
	})
	return database
}

func cleanupTestData(ctx context.Context, database *db.DB) {
	_, _ = database.Pool.Exec(ctx, `
		TRUNCATE outreach_email_generations, outreach_emails, outreach_cart,
			outreach_prospecting, outreach_archive, outreach_global_blacklist,
			outreach_settings, outreach_campaigns
		RESTART IDENTITY CASCADE
	`)
}

// CreateTestCampaign inserts a campaign and returns its id.
func CreateTestCampaign(t *testing.T, database *db.DB, name string, active bool) int64 {
	t.Helper()

	var id int64
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO outreach_campaigns (name, original_keywords, is_active)
		VALUES ($1, 'seo, links', $2)
		RETURNING id
	`, name, active).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test campaign: %v", err)
	}
	return id
}

// CreateTestProspect inserts a prospecting row and returns its id.
func CreateTestProspect(t *testing.T, database *db.DB, domain string, campaignID int64, status string, dr int, topByCountry string) int64 {
	t.Helper()

	var tbc any
	if topByCountry != "" {
		tbc = topByCountry
	}

	var id int64
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO outreach_prospecting (domain, campaign_id, campaign_name, processing_status, domain_rating, org_traffic_top_by_country)
		VALUES ($1, $2, (SELECT name FROM outreach_campaigns WHERE id = $2), $3, $4, $5::jsonb)
		RETURNING id
	`, domain, campaignID, status, dr, tbc).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test prospect: %v", err)
	}
	return id
}
