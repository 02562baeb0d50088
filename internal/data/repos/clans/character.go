package clans

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type CharacterRepo interface {
	Create(dbc dbctx.Context, chars []*types.Character) ([]*types.Character, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Character, error)
	// ListByClan returns current members ordered by name.
	ListByClan(dbc dbctx.Context, clanID uuid.UUID) ([]*types.Character, error)
	GetForUserInClan(dbc dbctx.Context, userID, clanID uuid.UUID) (*types.Character, error)
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	return &characterRepo{db: db, log: baseLog.With("repo", "CharacterRepo")}
}

func (r *characterRepo) Create(dbc dbctx.Context, chars []*types.Character) ([]*types.Character, error) {
	if len(chars) == 0 {
		return []*types.Character{}, nil
	}
	if err := dbc.Conn(r.db).Create(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}

func (r *characterRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Character, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var c types.Character
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *characterRepo) ListByClan(dbc dbctx.Context, clanID uuid.UUID) ([]*types.Character, error) {
	var out []*types.Character
	if clanID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("clan_id = ?", clanID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *characterRepo) GetForUserInClan(dbc dbctx.Context, userID, clanID uuid.UUID) (*types.Character, error) {
	if userID == uuid.Nil || clanID == uuid.Nil {
		return nil, nil
	}
	var c types.Character
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND clan_id = ?", userID, clanID).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}
