package domain

import "time"

type Session struct {
	UserID     string
	Email      string
	Token      string
	SignedInAt time.Time
}
