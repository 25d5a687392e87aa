package model

// JournalEntry is one persisted classification event. Date and Timestamp
// describe the same instant.
type JournalEntry struct {
	ID         int     `json:"id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date"`
	Timestamp  float64 `json:"timestamp"`
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatisticsSnapshot is an aggregate view over the whole journal.
type StatisticsSnapshot struct {
	TotalScans            int             `json:"totalScans"`
	ThisWeek              int             `json:"thisWeek"`
	MostCommon            string          `json:"mostCommon"`
	CategoryDistribution  []CategoryCount `json:"categoryDistribution"`
	RecentClassifications []JournalEntry  `json:"recentClassifications"`
}
