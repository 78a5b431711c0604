package content

import "time"

const dateLayout = "2006-01-02"

// FormatDate renders a YYYY-MM-DD date as "January 2, 2006". An empty date
// stays empty and anything unparsable is returned as given.
func FormatDate(date string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// normalizeDate keeps a frontmatter date only if it starts with a valid
// calendar date, truncating timestamps like 2026-02-14T09:30:00Z to the day.
func normalizeDate(s string) string {
	if len(s) < len(dateLayout) {
		return ""
	}
	day := s[:len(dateLayout)]
	if _, err := time.Parse(dateLayout, day); err != nil {
		return ""
	}
	if rest := s[len(dateLayout):]; rest != "" && rest[0] != 'T' && rest[0] != ' ' {
		return ""
	}
	return day
}
