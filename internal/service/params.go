package service

import "time"

// HistoryFilter bounds a history query by time range and row count.
type HistoryFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Limit int       // 0 means the repository default
}
