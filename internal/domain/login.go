package domain

import "time"

// LoginRecord is one audit entry in an account's bounded login history.
type LoginRecord struct {
	ID            string
	AccountID     string
	At            time.Time
	SourceAddress string
	DeviceContext string
	Success       bool
}
