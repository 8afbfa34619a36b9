package repository

// Scope ограничивает выборку и изменения задачами одного владельца.
// Нулевое значение не фильтрует ничего (открытый режим).
type Scope struct {
	OwnerID *int64
}

func Unscoped() Scope {
	return Scope{}
}

func OwnedBy(ownerID int64) Scope {
	return Scope{OwnerID: &ownerID}
}

func (s Scope) IsScoped() bool {
	return s.OwnerID != nil
}
