package model

import "time"

// The default client is the single tenant all mobile traffic belongs to.
const (
	DefaultClientID          int64 = 1
	DefaultClientName              = "AlphaLabs Mobile"
	DefaultClientDescription       = "Default client for mobile application"
)

// Client represents a tenant application.
type Client struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
