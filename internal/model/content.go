package model

// DietRecommendation is a curated diet suggestion shown on the diet page.
type DietRecommendation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ID          int64  `json:"-"`
}

// WellnessTip is a short wellness message shown on the wellness page.
type WellnessTip struct {
	Text string `json:"text"`
	ID   int64  `json:"-"`
}

// HealthRecord is a self-reported tracking entry (weight, cycle length).
type HealthRecord struct {
	Date        string   `json:"date"`
	Notes       string   `json:"notes"`
	ID          int64    `json:"-"`
	UserID      int64    `json:"-"`
	Weight      *float64 `json:"weight"`
	CycleLength *int     `json:"cycleLength"`
}
