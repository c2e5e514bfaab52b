package domain

import "time"

// OnlineWindow is how recent a heartbeat must be for a member to count as
// online.
const OnlineWindow = 300 * time.Second

// GroupState is a cooperative group's shared presence record. It is read from
// and written to an external shared store; the aggregator tolerates missing
// heartbeats (a member with no recorded heartbeat is offline, not an error).
type GroupState struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	LeaderID       string               `json:"leader_id"`
	Members        map[string]string    `json:"members"`
	LastSeen       map[string]time.Time `json:"last_seen"`
	LastActivity   time.Time            `json:"last_activity"`
	ActiveSessions map[string]bool      `json:"active_sessions"`
}

// MemberOnline reports whether a member heartbeated within the online window.
func (g *GroupState) MemberOnline(memberID string, now time.Time) bool {
	seen, ok := g.LastSeen[memberID]
	if !ok {
		return false
	}
	return now.Sub(seen) < OnlineWindow
}

// FullGroupOnline reports whether every member holds a live session flag
// simultaneously. Session flags, not heartbeat timestamps, gate the full
// bonus: a stale-but-recent timestamp must not trigger it.
func (g *GroupState) FullGroupOnline() bool {
	if len(g.Members) == 0 {
		return false
	}
	for memberID := range g.Members {
		if !g.ActiveSessions[memberID] {
			return false
		}
	}
	return true
}
