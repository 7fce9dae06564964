package models

import "time"

// HeartbeatID is the single row the keep-alive writes to.
const HeartbeatID = 1

// Heartbeat records the last time the backend was touched.
type Heartbeat struct {
	ID       uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	LastBeat time.Time `gorm:"not null" json:"last_beat"`
}
