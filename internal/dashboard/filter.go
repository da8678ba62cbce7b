package dashboard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mikey/email-triage-dashboard/internal/core"
)

// SpamFilter is the single-choice spam selector of the sidebar
type SpamFilter int

const (
	SpamAll SpamFilter = iota
	SpamOnly
	NotSpamOnly
)

// SpamFilters lists the selector options in display order
var SpamFilters = []SpamFilter{SpamAll, SpamOnly, NotSpamOnly}

// String returns the label shown in the sidebar
func (f SpamFilter) String() string {
	switch f {
	case SpamOnly:
		return "Spam Only"
	case NotSpamOnly:
		return "Not Spam Only"
	default:
		return "All"
	}
}

// MarshalText encodes the filter as its display label
func (f SpamFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseSpamFilter accepts the display labels and the short forms all, spam
// and ham, case-insensitively. An empty value selects All.
func ParseSpamFilter(value string) (SpamFilter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return SpamAll, nil
	case "spam only", "spam":
		return SpamOnly, nil
	case "not spam only", "not spam", "ham":
		return NotSpamOnly, nil
	default:
		return SpamAll, fmt.Errorf("unknown spam filter %q", value)
	}
}

// Matches reports whether a record with the given label passes the filter
func (f SpamFilter) Matches(label core.SpamLabel) bool {
	switch f {
	case SpamOnly:
		return label == core.LabelSpam
	case NotSpamOnly:
		return label == core.LabelNotSpam
	default:
		return true
	}
}

// Filter combines the spam selector with the selected urgency levels
type Filter struct {
	Spam      SpamFilter `json:"spam"`
	Urgencies []string   `json:"urgency"`
}

// Row is a record that survived filtering, tagged with its session position
type Row struct {
	Position int              `json:"position"`
	Record   core.EmailRecord `json:"email"`
}

// DefaultFilter shows every record: All with the three urgency levels
func DefaultFilter() Filter {
	urgencies := make([]string, len(core.UrgencyLevels))
	copy(urgencies, core.UrgencyLevels)
	return Filter{Spam: SpamAll, Urgencies: urgencies}
}

// Apply returns the records passing both predicates, in session order. An
// empty urgency selection matches nothing.
func (f Filter) Apply(records []core.EmailRecord) []Row {
	selected := make(map[string]struct{}, len(f.Urgencies))
	for _, u := range f.Urgencies {
		selected[strings.ToLower(u)] = struct{}{}
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if !f.Spam.Matches(rec.Spam) {
			continue
		}
		if _, ok := selected[strings.ToLower(rec.Urgency)]; !ok {
			continue
		}
		rows = append(rows, Row{Position: i, Record: rec})
	}
	return rows
}

// HasUrgency reports whether level is part of the selection
func (f Filter) HasUrgency(level string) bool {
	for _, u := range f.Urgencies {
		if strings.EqualFold(u, level) {
			return true
		}
	}
	return false
}

// filteredMarker is sent by the sidebar form so an all-unchecked urgency
// selection is told apart from a first visit
const filteredMarker = "filtered"

// FilterFromQuery reads the spam and urgency parameters. Urgency may repeat
// or be comma separated. Without any urgency or marker parameter the default
// three levels apply.
func FilterFromQuery(q url.Values) (Filter, error) {
	spam, err := ParseSpamFilter(q.Get("spam"))
	if err != nil {
		return Filter{}, err
	}

	_, hasUrgency := q["urgency"]
	_, submitted := q[filteredMarker]
	if !hasUrgency && !submitted {
		f := DefaultFilter()
		f.Spam = spam
		return f, nil
	}

	urgencies := []string{}
	seen := make(map[string]struct{})
	for _, raw := range q["urgency"] {
		for _, part := range strings.Split(raw, ",") {
			level := strings.ToLower(strings.TrimSpace(part))
			if level == "" {
				continue
			}
			if _, dup := seen[level]; dup {
				continue
			}
			seen[level] = struct{}{}
			urgencies = append(urgencies, level)
		}
	}

	return Filter{Spam: spam, Urgencies: urgencies}, nil
}

// Query encodes the filter so a redirect keeps the sidebar state
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("spam", f.Spam.String())
	q.Set(filteredMarker, "1")
	for _, u := range f.Urgencies {
		q.Add("urgency", u)
	}
	return q
}
