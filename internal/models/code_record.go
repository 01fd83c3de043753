package models

import "time"

// CodeRecord is the latest verification code issued to a mobile number.
type CodeRecord struct {
	Mobile   string    `json:"mobile"`
	Code     string    `json:"-"`
	IssuedAt time.Time `json:"issued_at"`
}

// QuotaCounter counts codes sent to a mobile since WindowStart.
type QuotaCounter struct {
	Mobile      string    `json:"mobile"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}
