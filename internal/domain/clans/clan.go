package clans

import (
	"time"

	"github.com/google/uuid"
)

type Clan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Clan) TableName() string { return "clan" }

// Character is a user's in-game character. GameCharID is the role id the game
// server writes into faction history as the actor.
type Character struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ClanID     *uuid.UUID `gorm:"type:uuid;index" json:"clan_id,omitempty"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	Class      string     `gorm:"column:class" json:"class"`
	GameCharID *int64     `gorm:"column:game_char_id;index" json:"game_char_id,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (Character) TableName() string { return "clan_character" }
