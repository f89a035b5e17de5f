package models

// DailyUsage is the number of active minutes recorded on one calendar day.
// Date is device-local and formatted as DateLayout.
type DailyUsage struct {
	Date    string `json:"day"`
	Minutes int    `json:"minutes"`
}

// DateLayout is the calendar date format used for usage and app-open keys.
const DateLayout = "2006-01-02"
