package models

import (
	"time"
)

type AccessLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"index;not null"`
	Method    string    `gorm:"type:varchar(10);not null"`
	Path      string    `gorm:"type:text;not null;index:,length:256"`
	Status    int       `gorm:"not null;index"`
	Duration  time.Duration
	IPHash    string `gorm:"type:varchar(16);not null"`
	UserAgent string `gorm:"type:text"`
	BytesSent int    `gorm:"not null;default:0"`
}

type ProxyRequestLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp     time.Time `gorm:"index;not null"`
	Route         string    `gorm:"type:varchar(128);not null;index"`
	EndpointClass string    `gorm:"type:varchar(32);not null;index"`
	IPHash        string    `gorm:"type:varchar(16);not null;index"`
	Status        int       `gorm:"not null;index"`
	Blocked       bool      `gorm:"not null;default:false"`
	Reason        string    `gorm:"type:varchar(64);not null"`
	LatencyMs     float64   `gorm:"not null;default:0"`
	CacheHit      bool      `gorm:"not null;default:false"`
}

func (AccessLog) TableName() string {
	return "access_logs"
}

func (ProxyRequestLog) TableName() string {
	return "proxy_request_logs"
}
