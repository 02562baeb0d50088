package factionlog

// Event is the typed view of a record's parameters.
type Event interface {
	Kind() EventType
}

type ItemGain struct{ ItemID int }
type ValorContribution struct{ Valor int }
type GoldContribution struct{ Gold int }
type Invite struct{ Invitee int64 }
type Join struct{}
type RefuseJoin struct{}
type Leave struct{}
type RoleChange struct {
	Target   int64
	Role     int
	Promoted bool
}
type Expel struct{ Target int64 }
type Unknown struct {
	Code   EventType
	Params [3]int
}

func (ItemGain) Kind() EventType          { return TypeItemGain }
func (ValorContribution) Kind() EventType { return TypeValor }
func (GoldContribution) Kind() EventType  { return TypeGold }
func (Invite) Kind() EventType            { return TypeInvite }
func (Join) Kind() EventType              { return TypeJoin }
func (RefuseJoin) Kind() EventType        { return TypeRefuseJoin }
func (Leave) Kind() EventType             { return TypeLeave }
func (RoleChange) Kind() EventType        { return TypeRoleChange }
func (Expel) Kind() EventType             { return TypeExpel }
func (u Unknown) Kind() EventType         { return u.Code }

func (r Record) Event() Event {
	p := r.Params
	switch r.Type {
	case TypeItemGain:
		return ItemGain{ItemID: p[0]}
	case TypeValor:
		return ValorContribution{Valor: p[0]}
	case TypeGold:
		return GoldContribution{Gold: p[0]}
	case TypeInvite:
		return Invite{Invitee: int64(p[0])}
	case TypeJoin:
		return Join{}
	case TypeRefuseJoin:
		return RefuseJoin{}
	case TypeLeave:
		return Leave{}
	case TypeRoleChange:
		return RoleChange{Target: int64(p[0]), Role: p[1], Promoted: p[2] == 1}
	case TypeExpel:
		return Expel{Target: int64(p[0])}
	default:
		return Unknown{Code: r.Type, Params: p}
	}
}
