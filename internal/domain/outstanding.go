package domain

// Outstanding is one aggregate over a filtered set of transactions. Both
// partition sums are always present, zero when their partition is empty.
type Outstanding struct {
	IncreaseTotal int64 `json:"increase_total"`
	DecreaseTotal int64 `json:"decrease_total"`
	Total         int64 `json:"total"`
}

// NewOutstanding subtracts the decrease partition from the increase partition.
func NewOutstanding(increase, decrease int64) Outstanding {
	return Outstanding{
		IncreaseTotal: increase,
		DecreaseTotal: decrease,
		Total:         increase - decrease,
	}
}
