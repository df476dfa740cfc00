// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes a JSON string or number into a string. The event site
// emits numeric member and owner ids; older exports carry them as strings.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// PartCompletion records when one part of one day was solved.
type PartCompletion struct {
	GetStarTS int64 `json:"get_star_ts"`
	StarIndex int64 `json:"star_index,omitempty"`
}

// Member is one participant inside one yearly snapshot.
type Member struct {
	ID          FlexString `json:"id"`
	Name        *string    `json:"name"` // nil or empty for anonymous users
	Stars       int        `json:"stars"`
	LocalScore  int        `json:"local_score"`
	GlobalScore int        `json:"global_score"`
	LastStarTS  int64      `json:"last_star_ts"` // 0 = never

	// CompletionDayLevel maps day ("1".."25") -> part ("1","2") -> completion.
	CompletionDayLevel map[string]map[string]PartCompletion `json:"completion_day_level"`
}

// DisplayName returns the member name or "" when absent.
func (m Member) DisplayName() string {
	if m.Name == nil {
		return ""
	}
	return *m.Name
}

// Snapshot is the on-disk shape of one downloaded leaderboard file.
type Snapshot struct {
	Event   string            `json:"event"`
	OwnerID FlexString        `json:"owner_id"`
	Members map[string]Member `json:"members"`
}

// YearRecord is a normalised snapshot keyed by its year label.
type YearRecord struct {
	Year    string
	Members map[string]Member
}
