package clans

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Clan) BeforeCreate(*gorm.DB) error                     { ensureID(&c.ID); return nil }
func (c *Character) BeforeCreate(*gorm.DB) error                { ensureID(&c.ID); return nil }
func (h *FactionHistory) BeforeCreate(*gorm.DB) error           { ensureID(&h.ID); return nil }
func (w *ClanWeeklyContext) BeforeCreate(*gorm.DB) error        { ensureID(&w.ID); return nil }
func (h *ClanHall) BeforeCreate(*gorm.DB) error                 { ensureID(&h.ID); return nil }
func (p *ClanHallProgress) BeforeCreate(*gorm.DB) error         { ensureID(&p.ID); return nil }
func (r *RhythmRecord) BeforeCreate(*gorm.DB) error             { ensureID(&r.ID); return nil }
func (f *ForbiddenKnowledgeRecord) BeforeCreate(*gorm.DB) error { ensureID(&f.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error                 { ensureID(&a.ID); return nil }
