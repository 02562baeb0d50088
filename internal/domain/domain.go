package domain

import "github.com/yungbote/clanhub-backend/internal/domain/clans"

type Clan = clans.Clan
type Character = clans.Character
type FactionHistory = clans.FactionHistory
type ClanWeeklyContext = clans.ClanWeeklyContext
type ClanHall = clans.ClanHall
type ClanHallProgress = clans.ClanHallProgress
type RhythmRecord = clans.RhythmRecord
type ForbiddenKnowledgeRecord = clans.ForbiddenKnowledgeRecord
type AuditLog = clans.AuditLog

const (
	AuditUploadHistory     = clans.AuditUploadHistory
	AuditUpdateWeeklyStats = clans.AuditUpdateWeeklyStats
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&Clan{},
		&Character{},
		&FactionHistory{},
		&ClanWeeklyContext{},
		&ClanHall{},
		&ClanHallProgress{},
		&RhythmRecord{},
		&ForbiddenKnowledgeRecord{},
		&AuditLog{},
	}
}
