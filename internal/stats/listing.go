package stats

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-classroom/internal/models"
)

// FilterSessions keeps sessions matching the group and the case-insensitive search term,
// which is compared against the topic and the resolved group name.
func FilterSessions(sessions []models.Session, filter models.SessionFilter, groupName func(groupID string) string) []models.Session {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if filter.GroupID != "" && session.GroupID != filter.GroupID {
			continue
		}
		if term != "" && !matchesSearch(session, term, groupName) {
			continue
		}
		out = append(out, session)
	}
	return out
}

func matchesSearch(session models.Session, term string, groupName func(string) string) bool {
	if strings.Contains(strings.ToLower(session.TopicText()), term) {
		return true
	}
	if groupName == nil {
		return false
	}
	return strings.Contains(strings.ToLower(groupName(session.GroupID)), term)
}

// SortSessions orders sessions by start time, latest first. Equal start times keep their
// input order.
func SortSessions(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].DateTime.After(sessions[j].DateTime)
	})
}
