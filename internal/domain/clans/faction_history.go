package clans

import (
	"time"

	"github.com/google/uuid"
)

// FactionHistory is one decoded faction log line as stored for a clan.
// CharacterID holds the game actor id, not a Character primary key.
// LedgeredAt is set in the same transaction that applies the record to the
// weekly ledgers; rows stored without it are fed again on the next upload.
type FactionHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClanID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_faction_history_clan_record,priority:1;index:idx_faction_history_clan_date,priority:1" json:"clan_id"`
	RecordID    int64      `gorm:"column:record_id;not null;uniqueIndex:idx_faction_history_clan_record,priority:2" json:"record_id"`
	Date        time.Time  `gorm:"column:date;not null;index:idx_faction_history_clan_date,priority:2" json:"date"`
	CharacterID int64      `gorm:"column:character_id;not null;index" json:"character_id"`
	EventType   int        `gorm:"column:event_type;not null" json:"event_type"`
	Action      string     `gorm:"column:action;not null" json:"action"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Param0      int        `gorm:"column:param0;not null" json:"param0"`
	Param1      int        `gorm:"column:param1;not null" json:"param1"`
	Param2      int        `gorm:"column:param2;not null" json:"param2"`
	LedgeredAt  *time.Time `gorm:"column:ledgered_at;index" json:"ledgered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (FactionHistory) TableName() string { return "faction_history" }
