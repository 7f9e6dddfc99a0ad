package handlers

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hostpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageViewEvent(at time.Time, page, referrer string) models.AnalyticsEvent {
	data, _ := json.Marshal(map[string]string{"page": page})
	return models.AnalyticsEvent{
		EventType: models.EventPageView,
		EventData: data,
		Referrer:  referrer,
		CreatedAt: at,
	}
}

func TestBuildRollup(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	t.Run("three views one error", func(t *testing.T) {
		events := []models.AnalyticsEvent{
			pageViewEvent(day, "/home", ""),
			pageViewEvent(day.Add(5*time.Minute), "/home", ""),
			pageViewEvent(day.Add(10*time.Minute), "/docs", ""),
			{EventType: models.EventError, CreatedAt: day.Add(15 * time.Minute)},
		}

		r := buildRollup(events, "24h")

		assert.Equal(t, int64(3), r.TotalPageViews)
		assert.Equal(t, int64(1), r.TotalErrors)
		assert.Equal(t, int64(0), r.TotalDownloads)

		require.Len(t, r.Days, 1)
		assert.Equal(t, "2026-08-30", r.Days[0].Date)
		assert.Equal(t, int64(4), r.Days[0].Total)
		assert.Equal(t, 25, r.Days[0].ErrorPercent)
	})

	t.Run("top pages ranked and capped", func(t *testing.T) {
		var events []models.AnalyticsEvent
		for i := 0; i < 12; i++ {
			page := fmt.Sprintf("/page-%02d", i)
			for j := 0; j <= i; j++ {
				events = append(events, pageViewEvent(day, page, ""))
			}
		}

		r := buildRollup(events, "7d")

		require.Len(t, r.TopPages, 10)
		assert.Equal(t, "/page-11", r.TopPages[0].Page)
		assert.Equal(t, int64(12), r.TopPages[0].Views)
		// ties break alphabetically, ranking is strictly descending
		for i := 1; i < len(r.TopPages); i++ {
			assert.GreaterOrEqual(t, r.TopPages[i-1].Views, r.TopPages[i].Views)
		}
	})

	t.Run("hourly traffic per domain", func(t *testing.T) {
		domainA, domainB := uint(1), uint(2)
		events := []models.AnalyticsEvent{
			{EventType: models.EventPageView, DomainID: &domainA, CreatedAt: day},
			{EventType: models.EventPageView, DomainID: &domainA, CreatedAt: day.Add(10 * time.Minute)},
			{EventType: models.EventPageView, DomainID: &domainB, CreatedAt: day},
			{EventType: models.EventPageView, DomainID: &domainA, CreatedAt: day.Add(time.Hour)},
		}

		r := buildRollup(events, "24h")

		require.Len(t, r.HourlyTraffic, 3)
		assert.Equal(t, "2026-08-30 14:00", r.HourlyTraffic[0].Hour)
		assert.Equal(t, uint(1), r.HourlyTraffic[0].DomainID)
		assert.Equal(t, int64(2), r.HourlyTraffic[0].Count)
		assert.Equal(t, uint(2), r.HourlyTraffic[1].DomainID)
		assert.Equal(t, "2026-08-30 15:00", r.HourlyTraffic[2].Hour)
	})

	t.Run("traffic sources", func(t *testing.T) {
		events := []models.AnalyticsEvent{
			pageViewEvent(day, "/", ""),
			pageViewEvent(day, "/", "https://www.google.com/search?q=x"),
			pageViewEvent(day, "/", "https://t.co/abc"),
		}

		r := buildRollup(events, "24h")

		assert.Equal(t, int64(1), r.TrafficSources["Direct"])
		assert.Equal(t, int64(1), r.TrafficSources["Google"])
		assert.Equal(t, int64(1), r.TrafficSources["Other"])
	})

	t.Run("no events", func(t *testing.T) {
		r := buildRollup(nil, "30d")

		assert.Equal(t, "30d", r.Period)
		assert.Empty(t, r.Days)
		assert.Empty(t, r.TopPages)
		assert.Empty(t, r.HourlyTraffic)
	})
}

func TestClassifySource(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                  "Direct",
		"   ":                               "Direct",
		"https://www.google.co.uk/search":   "Google",
		"https://m.facebook.com/page":       "Facebook",
		"https://twitter.com/someone":       "Twitter",
		"https://www.linkedin.com/in/x":     "Linkedin",
		"https://news.ycombinator.com/item": "Other",
		"not a url at all":                  "Other",
	}

	for referrer, want := range cases {
		assert.Equal(t, want, classifySource(referrer), "referrer %q", referrer)
	}
}

func TestErrorPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, errorPercent(0, 0))
	assert.Equal(t, 0, errorPercent(5, 0))
	assert.Equal(t, 25, errorPercent(1, 4))
	assert.Equal(t, 33, errorPercent(1, 3))
	assert.Equal(t, 67, errorPercent(2, 3))
	assert.Equal(t, 100, errorPercent(7, 7))
}

func TestPageFromEvent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a", pageFromEvent(json.RawMessage(`{"page":"/a"}`)))
	assert.Equal(t, "/b", pageFromEvent(json.RawMessage(`{"path":"/b"}`)))
	assert.Equal(t, "/c", pageFromEvent(json.RawMessage(`{"url":"/c"}`)))
	assert.Equal(t, "/a", pageFromEvent(json.RawMessage(`{"page":"/a","path":"/b"}`)))
	assert.Equal(t, "", pageFromEvent(nil))
	assert.Equal(t, "", pageFromEvent(json.RawMessage(`not json`)))
	assert.Equal(t, "", pageFromEvent(json.RawMessage(`{"other":"x"}`)))
}
