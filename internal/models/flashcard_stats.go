package models

// CardStatistics is an aggregate snapshot of a card collection.
type CardStatistics struct {
	Total       int     `json:"total"`
	Due         int     `json:"due"`
	Mastered    int     `json:"mastered"`
	Difficult   int     `json:"difficult"`
	AverageEase float64 `json:"average_ease"`
}

// CategoryCount is the number of cards filed under a category.
type CategoryCount struct {
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}
