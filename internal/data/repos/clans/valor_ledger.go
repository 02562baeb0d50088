package clans

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

// ValorLedgerRepo is the per-(context, character) valor total shared by the
// rhythm and forbidden knowledge ledgers.
type ValorLedgerRepo interface {
	// Increment adds each delta, creating rows as needed.
	Increment(dbc dbctx.Context, contextID uuid.UUID, deltas map[uuid.UUID]int) error
	// Set overwrites one character's valor.
	Set(dbc dbctx.Context, contextID, characterID uuid.UUID, valor int) error
	ListByContext(dbc dbctx.Context, contextID uuid.UUID) (map[uuid.UUID]int, error)
}

type valorLedgerRepo[T any] struct {
	db    *gorm.DB
	log   *logger.Logger
	table string
	build func(contextID, characterID uuid.UUID, valor int) *T
}

func NewRhythmRepo(db *gorm.DB, baseLog *logger.Logger) ValorLedgerRepo {
	return &valorLedgerRepo[types.RhythmRecord]{
		db:    db,
		log:   baseLog.With("repo", "RhythmRepo"),
		table: types.RhythmRecord{}.TableName(),
		build: func(contextID, characterID uuid.UUID, valor int) *types.RhythmRecord {
			return &types.RhythmRecord{ContextID: contextID, CharacterID: characterID, Valor: valor}
		},
	}
}

func NewForbiddenKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) ValorLedgerRepo {
	return &valorLedgerRepo[types.ForbiddenKnowledgeRecord]{
		db:    db,
		log:   baseLog.With("repo", "ForbiddenKnowledgeRepo"),
		table: types.ForbiddenKnowledgeRecord{}.TableName(),
		build: func(contextID, characterID uuid.UUID, valor int) *types.ForbiddenKnowledgeRecord {
			return &types.ForbiddenKnowledgeRecord{ContextID: contextID, CharacterID: characterID, Valor: valor}
		},
	}
}

var ledgerKey = []clause.Column{{Name: "context_id"}, {Name: "character_id"}}

func (r *valorLedgerRepo[T]) Increment(dbc dbctx.Context, contextID uuid.UUID, deltas map[uuid.UUID]int) error {
	if len(deltas) == 0 {
		return nil
	}
	rows := make([]*T, 0, len(deltas))
	for charID, valor := range deltas {
		rows = append(rows, r.build(contextID, charID, valor))
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: ledgerKey,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"valor":      gorm.Expr(fmt.Sprintf("%s.valor + excluded.valor", r.table)),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&rows).Error
}

func (r *valorLedgerRepo[T]) Set(dbc dbctx.Context, contextID, characterID uuid.UUID, valor int) error {
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   ledgerKey,
			DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
		}).
		Create(r.build(contextID, characterID, valor)).Error
}

func (r *valorLedgerRepo[T]) ListByContext(dbc dbctx.Context, contextID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		CharacterID uuid.UUID
		Valor       int
	}
	if err := dbc.Conn(r.db).
		Table(r.table).
		Select("character_id, valor").
		Where("context_id = ?", contextID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.CharacterID] = row.Valor
	}
	return out, nil
}
