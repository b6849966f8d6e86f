package transport

// StatsRequest selects the window the aggregates describe.
type StatsRequest struct {
	DateStart string `form:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `form:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
	Executive string `form:"executive" validate:"omitempty,max=120"`
}
