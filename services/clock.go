package services

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the format of history keys and Clock.Today.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
	// Today is the local calendar date as YYYY-MM-DD.
	Today() string
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Today() string {
	return time.Now().Format(DateLayout)
}

type IDGenerator interface {
	NewID(prefix string) string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
