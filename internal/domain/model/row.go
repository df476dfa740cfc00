package model

// RegistrationEntry is what the registration sheet knows about a username.
type RegistrationEntry struct {
	FullName string `json:"full_name"`
	Level    string `json:"level"`
}

// Row is one derived leaderboard line. It is computed fresh on every load
// cycle and never stored.
type Row struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FullName   string `json:"full_name,omitempty"`
	Level      string `json:"level,omitempty"`
	PerYear    []int  `json:"per_year"` // one entry per loaded year, in year order
	Total      int    `json:"total"`
	LastStarTS int64  `json:"last_star_ts,omitempty"`
}
