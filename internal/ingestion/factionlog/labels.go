package factionlog

import "fmt"

// describe renders the in-game wording for a record. Text is presentational
// only; reconciliation never reads it.
func describe(who int64, ev Event) (action, description string) {
	switch e := ev.(type) {
	case ItemGain:
		return "Получает предмет",
			fmt.Sprintf("Игрок {role_id:%d} получает предмет {item_id:%d}.", who, e.ItemID)
	case ValorContribution:
		return "Вносит вклад (доблесть)",
			fmt.Sprintf("Игрок {role_id:%d} вносит вклад %d очков доблести.", who, e.Valor)
	case GoldContribution:
		return "Вносит вклад (золото)",
			fmt.Sprintf("Игрок {role_id:%d} вносит вклад %d золота гильдии.", who, e.Gold)
	case Invite:
		return "Приглашает игрока",
			fmt.Sprintf("Игрок {role_id:%d} приглашает игрока {role_id:%d} в гильдию.", who, e.Invitee)
	case Join:
		return "Вступает в гильдию",
			fmt.Sprintf("Игрок {role_id:%d} вступает в гильдию.", who)
	case RefuseJoin:
		return "Отказывается вступить в гильдию",
			fmt.Sprintf("Игрок {role_id:%d} отказывается вступить в гильдию.", who)
	case Leave:
		return "Покидает гильдию",
			fmt.Sprintf("Игрок {role_id:%d} покидает гильдию.", who)
	case RoleChange:
		op := "понижает"
		if e.Promoted {
			op = "повышает"
		}
		return "Изменяет должность",
			fmt.Sprintf("Игрок {role_id:%d} %s игрока {role_id:%d} до должности %s.", who, op, e.Target, roleName(e.Role))
	case Expel:
		return "Изгоняет игрока",
			fmt.Sprintf("Игрок {role_id:%d} изгоняет игрока {role_id:%d} из гильдии.", who, e.Target)
	default:
		return fmt.Sprintf("Неизвестное действие %d", int32(ev.Kind())), ""
	}
}

func roleName(role int) string {
	switch role {
	case 2:
		return "Мастер"
	case 3:
		return "Маршал"
	case 4:
		return "Майор"
	case 5:
		return "Капитан"
	case 6:
		return "Рядовой"
	default:
		return fmt.Sprintf("Неизвестная должность %d", role)
	}
}
