package fileindex

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recording is one EEG file known to the dashboard
type Recording struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Path       string             `json:"path" bson:"path"`
	Format     string             `json:"format,omitempty" bson:"format,omitempty"`
	Channels   []string           `json:"channels" bson:"channels"`
	SampleRate float64            `json:"sample_rate,omitempty" bson:"sample_rate,omitempty"`
	Duration   float64            `json:"duration,omitempty" bson:"duration,omitempty"`
	Size       int64              `json:"size" bson:"size"`
	UploadedAt time.Time          `json:"uploaded_at" bson:"uploaded_at"`
}
