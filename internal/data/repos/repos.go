package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/repos/clans"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type (
	ClanRepo             = clans.ClanRepo
	CharacterRepo        = clans.CharacterRepo
	FactionHistoryRepo   = clans.FactionHistoryRepo
	WeeklyContextRepo    = clans.WeeklyContextRepo
	ClanHallProgressRepo = clans.ClanHallProgressRepo
	ValorLedgerRepo      = clans.ValorLedgerRepo
	AuditLogRepo         = clans.AuditLogRepo
	AuditFilter          = clans.AuditFilter
)

var (
	NewClanRepo               = clans.NewClanRepo
	NewCharacterRepo          = clans.NewCharacterRepo
	NewFactionHistoryRepo     = clans.NewFactionHistoryRepo
	NewWeeklyContextRepo      = clans.NewWeeklyContextRepo
	NewClanHallProgressRepo   = clans.NewClanHallProgressRepo
	NewRhythmRepo             = clans.NewRhythmRepo
	NewForbiddenKnowledgeRepo = clans.NewForbiddenKnowledgeRepo
	NewAuditLogRepo           = clans.NewAuditLogRepo
)

// Set is every repository the services need, built over one *gorm.DB.
type Set struct {
	Clan             ClanRepo
	Character        CharacterRepo
	FactionHistory   FactionHistoryRepo
	WeeklyContext    WeeklyContextRepo
	ClanHallProgress ClanHallProgressRepo
	Rhythm           ValorLedgerRepo
	Forbidden        ValorLedgerRepo
	Audit            AuditLogRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Clan:             NewClanRepo(db, log),
		Character:        NewCharacterRepo(db, log),
		FactionHistory:   NewFactionHistoryRepo(db, log),
		WeeklyContext:    NewWeeklyContextRepo(db, log),
		ClanHallProgress: NewClanHallProgressRepo(db, log),
		Rhythm:           NewRhythmRepo(db, log),
		Forbidden:        NewForbiddenKnowledgeRepo(db, log),
		Audit:            NewAuditLogRepo(db, log),
	}
}
