package models

import "time"

// Word represents a Greek vocabulary entry to be learned
type Word struct {
	ID           int64     `json:"id" db:"id"`
	Greek        string    `json:"greek" db:"greek"`
	English      string    `json:"english" db:"english"`
	PartOfSpeech string    `json:"part_of_speech" db:"part_of_speech"`
	ExampleEl    string    `json:"example_el" db:"example_el"` // Example sentence in Greek
	ExampleEn    string    `json:"example_en" db:"example_en"` // Example sentence in English
	Tags         Tags      `json:"tags" db:"tags"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
