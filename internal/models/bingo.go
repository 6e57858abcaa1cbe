package models

import "time"

// Track is one playable catalog entry. Identity is by ID; records are
// immutable once loaded into a session.
type Track struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"index" json:"title"`
	Artist      string    `gorm:"index" json:"artist"`
	ReleaseYear int       `json:"release_year"`
	PreviewURL  string    `json:"preview_url"`
	ArtworkURL  string    `json:"artwork_url"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// JingleSchedule places a station jingle between rounds. Pure CRUD data;
// the sequencer itself never reads it, the board UI does.
type JingleSchedule struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"index" json:"name"`
	AudioURL   string    `json:"audio_url"`
	EverySongs int       `json:"every_songs"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
