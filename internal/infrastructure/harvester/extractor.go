package harvester

import "AperoScanner/internal/domain"

// Extract projects a raw API event into the feed shape. Total: missing
// fields default to empty strings. Title prefers English over German.
// Times are fixed-offset slices of the ISO timestamps, not a full parse,
// so a malformed-but-long timestamp yields garbage rather than an error.
func Extract(event domain.RawEvent) domain.NormalizedEvent {
	title := event.Text("title_en")
	if title == "" {
		title = event.Text("title_de")
	}

	timeStart := event.Text("time_start")
	timeEnd := event.Text("time_end")

	return domain.NormalizedEvent{
		URL:       event.SelfLink(),
		Title:     title,
		Date:      datePart(timeStart),
		StartTime: clockPart(timeStart),
		EndTime:   clockPart(timeEnd),
		Location:  event.Text("location"),
	}
}

// datePart returns the YYYY-MM-DD prefix of an ISO timestamp.
func datePart(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

// clockPart returns the HH:MM slice at offset 11, or "" when the timestamp
// is too short to carry a time component.
func clockPart(ts string) string {
	if len(ts) < 16 {
		return ""
	}
	return ts[11:16]
}
