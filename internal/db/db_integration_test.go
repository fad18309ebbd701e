//go:build integration

package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach/internal/db"
	"outreach/internal/facts"
	"outreach/internal/models"
	"outreach/internal/query"
	"outreach/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestCart(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()
	campaignID := testutil.CreateTestCampaign(t, database, "cart-campaign", false)

	for i, domain := range []string{"alpha.com", "beta.com", "gamma.com"} {
		added, err := database.AddToCart(ctx, &models.CartEntry{
			SessionID:       "sess-a",
			Domain:          domain,
			SimilarityScore: ptr(float64(90 - i*10)),
			CampaignID:      &campaignID,
		})
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := database.AddToCart(ctx, &models.CartEntry{SessionID: "sess-a", Domain: "alpha.com"})
	require.NoError(t, err)
	assert.False(t, added, "duplicate domain in the same session")

	other := &models.CartEntry{SessionID: "sess-b", Domain: "alpha.com"}
	added, err = database.AddToCart(ctx, other)
	require.NoError(t, err)
	assert.True(t, added)

	page, err := database.ListCart(ctx, "sess-a", query.ParseParams(""))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Matched)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "alpha.com", page.Items[0].Domain, "default order is similarity descending")

	filtered, err := database.ListCart(ctx, "sess-a", query.ParseParams("domain=GAM&order=domain,ASC"))
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "gamma.com", filtered.Items[0].Domain)

	n, err := database.CountCartForCampaign(ctx, "sess-a", campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	deleted, err := database.DeleteCartEntries(ctx, "sess-a", []int64{page.Items[0].ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "entries of other sessions are untouched")

	n, err = database.CountCart(ctx, "sess-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListProspects(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()
	c1 := testutil.CreateTestCampaign(t, database, "first", false)
	c2 := testutil.CreateTestCampaign(t, database, "second", false)

	testutil.CreateTestProspect(t, database, "us-big.com", c1, models.ProcessingCompleted, 70, `[["us", 5000], ["de", 10]]`)
	testutil.CreateTestProspect(t, database, "de-only.com", c1, models.ProcessingPending, 40, `[["DE", "1200 visits"]]`)
	testutil.CreateTestProspect(t, database, "broken.com", c2, models.ProcessingFailed, 10, `{"not": "an array"}`)
	testutil.CreateTestProspect(t, database, "empty.com", c2, models.ProcessingPending, 20, "")

	tests := []struct {
		name    string
		params  string
		domains []string
	}{
		{"default order", "", []string{"us-big.com", "de-only.com", "empty.com", "broken.com"}},
		{"top country matches any tuple", "top_country=de", []string{"us-big.com", "de-only.com"}},
		{"hostile country is ignored", "top_country=US'", []string{"us-big.com", "de-only.com", "empty.com", "broken.com"}},
		{"campaign", "campaign=second&order=domain,ASC", []string{"broken.com", "empty.com"}},
		{"status allow-list", "status=pending,bogus&order=domain,ASC", []string{"de-only.com", "empty.com"}},
		{"rating range", "dr=30,80", []string{"us-big.com", "de-only.com"}},
		{"top traffic range", "top_traffic=1000,2000", []string{"de-only.com"}},
		{"order by top country", "order=top_country,ASC", []string{"de-only.com", "us-big.com", "broken.com", "empty.com"}},
		{"unknown order field", "order=not_a_real_field,ASC", []string{"us-big.com", "de-only.com", "empty.com", "broken.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := database.ListProspects(ctx, query.ParseParams(tt.params))
			require.NoError(t, err)
			var got []string
			for _, p := range page.Items {
				got = append(got, p.Domain)
			}
			assert.Equal(t, tt.domains, got)
			assert.Equal(t, int64(len(tt.domains)), page.Matched)
		})
	}

	stats, err := database.ProspectingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProspectingStats{Total: 4, Pending: 2, Completed: 1, Failed: 1}, stats)

	countries, err := database.ProspectingTopCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "US"}, countries)

	campaigns, err := database.ProspectingCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, campaigns)

	pending, err := database.CountProspectsForCampaign(ctx, c2, models.ProcessingPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestListProspects_Cap(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()
	c := testutil.CreateTestCampaign(t, database, "bulk", false)

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO outreach_prospecting (domain, campaign_id, campaign_name, domain_rating)
		SELECT 'd' || g || '.com', $1, 'bulk', g % 100 FROM generate_series(1, 520) AS g
	`, c)
	require.NoError(t, err)

	page, err := database.ListProspects(ctx, query.ParseParams("page=3&page_size=200"))
	require.NoError(t, err)
	assert.Len(t, page.Items, 100)
	pg := page.Query.Pagination(page.Matched, page.Matched)
	assert.Equal(t, int64(500), pg.TotalRecords)
	assert.Equal(t, int64(520), pg.TotalAvailable)
	assert.Equal(t, 3, pg.TotalPages)

	page, err = database.ListProspects(ctx, query.ParseParams("page=4&page_size=200"))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListProspects_PagesWalkUnpaginatedOrder(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()
	c := testutil.CreateTestCampaign(t, database, "bulk", false)

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO outreach_prospecting (domain, campaign_id, campaign_name, domain_rating)
		SELECT 'd' || g || '.com', $1, 'bulk', g % 100 FROM generate_series(1, 520) AS g
	`, c)
	require.NoError(t, err)
	// Few distinct traffic values and many NULLs, so the sort key ties heavily.
	_, err = database.Pool.Exec(ctx, `
		UPDATE outreach_prospecting
		SET org_traffic_top_by_country = jsonb_build_array(jsonb_build_array('us', (id % 5) * 100))
		WHERE id % 3 <> 0
	`)
	require.NoError(t, err)

	for _, order := range []string{"domain_rating,DESC", "top_traffic,DESC"} {
		t.Run(order, func(t *testing.T) {
			rows, err := database.Pool.Query(ctx,
				`SELECT p.id FROM outreach_prospecting p ORDER BY `+db.ProspectCollection.OrderBy(order))
			require.NoError(t, err)
			var want []int64
			for rows.Next() {
				var id int64
				require.NoError(t, rows.Scan(&id))
				want = append(want, id)
			}
			require.NoError(t, rows.Err())
			rows.Close()
			require.Len(t, want, 520)
			want = want[:db.MaxProspectingRows]

			var got []int64
			seen := map[int64]bool{}
			for n := 1; n <= 30; n++ {
				page, err := database.ListProspects(ctx,
					query.ParseParams(fmt.Sprintf("page=%d&page_size=25&order=%s", n, order)))
				require.NoError(t, err)
				if len(page.Items) == 0 {
					break
				}
				for _, it := range page.Items {
					assert.False(t, seen[it.ID], "id %d repeated on page %d", it.ID, n)
					seen[it.ID] = true
					got = append(got, it.ID)
				}
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestToggleProcessingPaused(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()

	paused, err := database.ProcessingPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused, "missing setting means running")

	paused, err = database.ToggleProcessingPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	paused, err = database.ToggleProcessingPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	paused, err = database.ProcessingPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestCampaigns(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()

	first := &models.Campaign{Name: "one", OriginalKeywords: "a", ExpandedKeywords: "a, b", IsActive: true, Status: models.CampaignActive, CronAddCount: 10}
	require.NoError(t, database.CreateCampaign(ctx, first))
	second := &models.Campaign{Name: "two", OriginalKeywords: "c", ExpandedKeywords: "c", IsActive: true, Status: models.CampaignActive, CronAddCount: 5}
	require.NoError(t, database.CreateCampaign(ctx, second))

	got, err := database.GetCampaign(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "creating an active campaign deactivates the others")

	err = database.CreateCampaign(ctx, &models.Campaign{Name: "one", OriginalKeywords: "x", Status: models.CampaignActive})
	assert.ErrorIs(t, err, db.ErrDuplicateCampaign)

	updated, err := database.UpdateCampaign(ctx, first.ID, models.CampaignPatch{IsActive: ptr(true), CronAddCount: ptr(99)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, 99, updated.CronAddCount)
	assert.Equal(t, "a, b", updated.ExpandedKeywords)

	got, err = database.GetCampaign(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = database.UpdateCampaign(ctx, 9999, models.CampaignPatch{Status: ptr(models.CampaignPaused)})
	assert.ErrorIs(t, err, db.ErrCampaignNotFound)

	seeded, err := database.SeedCampaign(ctx, &models.Campaign{Name: "two", OriginalKeywords: "z", Status: models.CampaignActive})
	require.NoError(t, err)
	assert.False(t, seeded)

	require.NoError(t, database.DeleteCampaign(ctx, second.ID))
	assert.ErrorIs(t, database.DeleteCampaign(ctx, second.ID), db.ErrCampaignNotFound)

	all, err := database.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "one", all[0].Name)
}

func TestEmails(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()

	var emailID int64
	err := database.Pool.QueryRow(ctx, `
		INSERT INTO outreach_emails (domain, campaign_name, original_prospecting_id, status, analysis_json, analyzed_at)
		VALUES ('mail.com', 'first', 77, 'analyzed',
			'{"overall_link_value": 8, "link_building_recommendation": {"verdict": "approve", "outreach_priority": "high"}, "guest_post_analysis": {"accepts_guest_posts": "yes"}}',
			NOW())
		RETURNING id
	`).Scan(&emailID)
	require.NoError(t, err)
	_, err = database.Pool.Exec(ctx, `
		INSERT INTO outreach_emails (domain, status, outreach_status, link_value_score, analyzed_at)
		VALUES ('plain.com', 'analyzed', 'REJECT', 3, NOW() - INTERVAL '1 day')
	`)
	require.NoError(t, err)
	_, err = database.Pool.Exec(ctx, `
		INSERT INTO outreach_archive (original_prospecting_id, domain, domain_rating, org_traffic, org_keywords,
			processing_status, original_created_at, original_updated_at, archive_reason, archived_at)
		VALUES
			(77, 'mail.com', 10, 100, 1, 'completed', NOW(), NOW(), 'r', NOW() - INTERVAL '1 hour'),
			(77, 'mail.com', 55, 900, 9, 'completed', NOW(), NOW(), 'r', NOW())
	`)
	require.NoError(t, err)

	row, err := database.GetEmail(ctx, emailID)
	require.NoError(t, err)
	require.NotNil(t, row.DomainRating)
	assert.Equal(t, 55, *row.DomainRating, "latest archive snapshot wins")

	tests := []struct {
		params  string
		domains []string
	}{
		{"", []string{"mail.com", "plain.com"}},
		{"verdict=approve", []string{"mail.com"}},
		{"verdict=REJECT", []string{"plain.com"}},
		{"priority=High", []string{"mail.com"}},
		{"guest_posts=unknown", []string{"plain.com"}},
		{"link_value=5,10", []string{"mail.com"}},
		{"traffic=500,1000", []string{"mail.com"}},
		{"order=link_value,ASC", []string{"plain.com", "mail.com"}},
	}
	for _, tt := range tests {
		page, err := database.ListEmails(ctx, query.ParseParams(tt.params))
		require.NoError(t, err, tt.params)
		var got []string
		for _, e := range page.Items {
			got = append(got, e.Domain)
		}
		assert.Equal(t, tt.domains, got, tt.params)
	}

	_, err = database.GetEmail(ctx, 424242)
	assert.ErrorIs(t, err, db.ErrEmailNotFound)

	_, err = database.UpdateLatestGeneration(ctx, emailID, ptr("draft"), nil)
	assert.ErrorIs(t, err, db.ErrGenerationNotFound)

	gen := &models.EmailGeneration{EmailID: emailID, Domain: "mail.com", PromptUsed: "p", GeneratedEmail: "hello"}
	require.NoError(t, database.CreateGeneration(ctx, gen))

	saved, err := database.UpdateLatestGeneration(ctx, emailID, ptr("edited"), nil)
	require.NoError(t, err)
	assert.Equal(t, gen.ID, saved.ID)
	assert.Equal(t, "edited", saved.GeneratedEmail)
	assert.Equal(t, "p", saved.PromptUsed)

	latest, err := database.LatestGeneration(ctx, emailID)
	require.NoError(t, err)
	assert.Equal(t, "edited", latest.GeneratedEmail)
}

func TestListEmails_PrioritySortAgreesWithFacts(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO outreach_emails (domain, status, outreach_priority, analysis_json, analyzed_at) VALUES
			('urgent.com', 'analyzed', NULL, '{"link_building_recommendation": {"outreach_priority": "urgent"}}', NOW()),
			('medium.com', 'analyzed', NULL, '{"link_building_recommendation": {"outreach_priority": "MEDIUM"}}', NOW()),
			('high.com', 'analyzed', NULL, '{"link_building_recommendation": {"outreach_priority": " high "}}', NOW()),
			('low.com', 'analyzed', 'Low', '{"link_building_recommendation": {"outreach_priority": "high"}}', NOW()),
			('none.com', 'analyzed', NULL, NULL, NOW())
	`)
	require.NoError(t, err)

	page, err := database.ListEmails(ctx, query.ParseParams("order=priority,ASC"))
	require.NoError(t, err)
	var domains, priorities []string
	for _, row := range page.Items {
		domains = append(domains, row.Domain)
		priorities = append(priorities, facts.Priority(row.OutreachPriority, facts.ExtractAnalysis(row.Analysis).Priority))
	}
	assert.Equal(t, []string{"high.com", "low.com", "medium.com", "urgent.com", "none.com"}, domains)
	assert.Equal(t, []string{models.PriorityHigh, models.PriorityLow, models.PriorityMedium,
		models.PriorityUnknown, models.PriorityUnknown}, priorities)

	for _, want := range []string{models.PriorityHigh, models.PriorityLow, models.PriorityMedium} {
		page, err := database.ListEmails(ctx, query.ParseParams("priority="+want))
		require.NoError(t, err)
		require.Len(t, page.Items, 1, want)
		row := page.Items[0]
		assert.Equal(t, want, facts.Priority(row.OutreachPriority, facts.ExtractAnalysis(row.Analysis).Priority))
	}
}
