package clans

import (
	"time"

	"github.com/google/uuid"
)

// ClanWeeklyContext anchors one clan's ledgers for one ISO week.
type ClanWeeklyContext struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClanID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_context_clan_week,priority:1" json:"clan_id"`
	WeekIso    string    `gorm:"column:week_iso;not null;uniqueIndex:idx_weekly_context_clan_week,priority:2" json:"week_iso"`
	WeekNumber int       `gorm:"column:week_number;not null" json:"week_number"`
	DateStart  time.Time `gorm:"column:date_start;not null" json:"date_start"`
	DateEnd    time.Time `gorm:"column:date_end;not null" json:"date_end"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (ClanWeeklyContext) TableName() string { return "clan_weekly_context" }

type ClanHall struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContextID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"context_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ClanHall) TableName() string { return "clan_hall" }

// ClanHallProgress is one stage checkpoint. CreatedAt is the game time of the
// contribution and is part of the idempotency key.
type ClanHallProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClanHallID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_clan_hall_progress_key,priority:1" json:"clan_hall_id"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_clan_hall_progress_key,priority:2;index" json:"character_id"`
	Stage       int       `gorm:"column:stage;not null;uniqueIndex:idx_clan_hall_progress_key,priority:3" json:"stage"`
	Valor       int       `gorm:"column:valor;not null" json:"valor"`
	Gold        int       `gorm:"column:gold;not null" json:"gold"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime:false;uniqueIndex:idx_clan_hall_progress_key,priority:4" json:"created_at"`
}

func (ClanHallProgress) TableName() string { return "clan_hall_progress" }

type RhythmRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContextID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rhythm_context_character,priority:1" json:"context_id"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rhythm_context_character,priority:2" json:"character_id"`
	Valor       int       `gorm:"column:valor;not null" json:"valor"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (RhythmRecord) TableName() string { return "rhythm" }

// ForbiddenKnowledgeRecord stores ZU valor; circles are valor/7.
type ForbiddenKnowledgeRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContextID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_forbidden_knowledge_context_character,priority:1" json:"context_id"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_forbidden_knowledge_context_character,priority:2" json:"character_id"`
	Valor       int       `gorm:"column:valor;not null" json:"valor"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (ForbiddenKnowledgeRecord) TableName() string { return "forbidden_knowledge" }
