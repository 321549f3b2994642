package models

import (
	"time"
)

// Log is one application log line as stored in the logs collection
type Log struct {
	AppID        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	UserID       string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	WidgetID     string    `bson:"widget_id,omitempty" json:"widget_id,omitempty"`
	SurfaceID    string    `bson:"surface_id,omitempty" json:"surface_id,omitempty"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
