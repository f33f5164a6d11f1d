package model

import "time"

// VideoSource marks how a video entered the library.
type VideoSource string

const (
	VideoSourceManual      VideoSource = "manual"
	VideoSourceAIGenerated VideoSource = "ai_generated"
)

type Video struct {
	ID        int         `db:"id"         json:"id"`
	CompanyID int         `db:"company_id" json:"company_id"`
	Title     string      `db:"title"      json:"title"`
	URL       string      `db:"video_url"  json:"video_url"`
	Source    VideoSource `db:"source"     json:"source"`

	// AI provenance, kept only so a clip can be regenerated.
	AIPrompt      *string `db:"ai_prompt"       json:"ai_prompt,omitempty"`
	AISourceImage *string `db:"ai_source_image" json:"ai_source_image,omitempty"`
	AIStyle       *string `db:"ai_style"        json:"ai_style,omitempty"`
	AIDuration    *int    `db:"ai_duration"     json:"ai_duration,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
