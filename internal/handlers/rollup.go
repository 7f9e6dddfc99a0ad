package handlers

import (
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/hostpanel/backend/internal/models"
)

// DayBucket is one day of rolled-up event counts
type DayBucket struct {
	Date         string `json:"date"`
	PageViews    int64  `json:"page_views"`
	Downloads    int64  `json:"downloads"`
	Errors       int64  `json:"errors"`
	Total        int64  `json:"total_requests"`
	ErrorPercent int    `json:"error_percent"`
}

// HourBucket is one hour of per-domain traffic
type HourBucket struct {
	Hour     string `json:"hour"`
	DomainID uint   `json:"domain_id"`
	Count    int64  `json:"count"`
}

// PageCount is a page ranked by view count
type PageCount struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
}

// Rollup is the full analytics report for a period
type Rollup struct {
	Period         string           `json:"period"`
	TotalPageViews int64            `json:"total_page_views"`
	TotalDownloads int64            `json:"total_downloads"`
	TotalErrors    int64            `json:"total_errors"`
	Days           []DayBucket      `json:"days"`
	HourlyTraffic  []HourBucket     `json:"hourly_traffic"`
	TopPages       []PageCount      `json:"top_pages"`
	TrafficSources map[string]int64 `json:"traffic_sources"`
}

// classifySource maps a referrer to a traffic-source label by substring
// match on the host. Empty referrers are direct traffic.
func classifySource(referrer string) string {
	if strings.TrimSpace(referrer) == "" {
		return "Direct"
	}

	host := referrer
	if u, err := url.Parse(referrer); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)

	for _, source := range []string{"google", "facebook", "twitter", "linkedin"} {
		if strings.Contains(host, source) {
			return strings.ToUpper(source[:1]) + source[1:]
		}
	}
	return "Other"
}

// errorPercent computes round(errors/total*100); zero traffic is zero
// percent by definition, not a division error.
func errorPercent(errors, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(errors) / float64(total) * 100))
}

// pageFromEvent pulls the viewed page out of a page_view payload
func pageFromEvent(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var payload struct {
		Page string `json:"page"`
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Page != "":
		return payload.Page
	case payload.Path != "":
		return payload.Path
	default:
		return payload.URL
	}
}

// buildRollup aggregates raw events into the report. Events are expected
// to already be filtered to the user and period.
func buildRollup(events []models.AnalyticsEvent, period string) Rollup {
	rollup := Rollup{
		Period:         period,
		Days:           []DayBucket{},
		HourlyTraffic:  []HourBucket{},
		TopPages:       []PageCount{},
		TrafficSources: map[string]int64{},
	}

	days := map[string]*DayBucket{}
	hours := map[string]*HourBucket{}
	pageViews := map[string]int64{}

	for i := range events {
		ev := &events[i]
		day := ev.CreatedAt.Format("2006-01-02")

		bucket, ok := days[day]
		if !ok {
			bucket = &DayBucket{Date: day}
			days[day] = bucket
		}
		bucket.Total++

		switch ev.EventType {
		case models.EventPageView:
			bucket.PageViews++
			rollup.TotalPageViews++
			if page := pageFromEvent(ev.EventData); page != "" {
				pageViews[page]++
			}
			rollup.TrafficSources[classifySource(ev.Referrer)]++
		case models.EventDownload:
			bucket.Downloads++
			rollup.TotalDownloads++
		case models.EventError:
			bucket.Errors++
			rollup.TotalErrors++
		}

		if ev.DomainID != nil {
			hour := ev.CreatedAt.Format("2006-01-02 15:00")
			key := hour + "#" + strconv.FormatUint(uint64(*ev.DomainID), 10)
			hb, ok := hours[key]
			if !ok {
				hb = &HourBucket{Hour: hour, DomainID: *ev.DomainID}
				hours[key] = hb
			}
			hb.Count++
		}
	}

	for _, bucket := range days {
		bucket.ErrorPercent = errorPercent(bucket.Errors, bucket.Total)
		rollup.Days = append(rollup.Days, *bucket)
	}
	sort.Slice(rollup.Days, func(i, j int) bool {
		return rollup.Days[i].Date < rollup.Days[j].Date
	})

	for _, hb := range hours {
		rollup.HourlyTraffic = append(rollup.HourlyTraffic, *hb)
	}
	sort.Slice(rollup.HourlyTraffic, func(i, j int) bool {
		if rollup.HourlyTraffic[i].Hour != rollup.HourlyTraffic[j].Hour {
			return rollup.HourlyTraffic[i].Hour < rollup.HourlyTraffic[j].Hour
		}
		return rollup.HourlyTraffic[i].DomainID < rollup.HourlyTraffic[j].DomainID
	})

	for page, views := range pageViews {
		rollup.TopPages = append(rollup.TopPages, PageCount{Page: page, Views: views})
	}
	sort.Slice(rollup.TopPages, func(i, j int) bool {
		if rollup.TopPages[i].Views != rollup.TopPages[j].Views {
			return rollup.TopPages[i].Views > rollup.TopPages[j].Views
		}
		return rollup.TopPages[i].Page < rollup.TopPages[j].Page
	})
	if len(rollup.TopPages) > 10 {
		rollup.TopPages = rollup.TopPages[:10]
	}

	return rollup
}
