package models

// Subscription — запись подписки пользователя.
// Адрес выводится из UID пользователя, поэтому на пользователя существует
// не более одной записи; поле UserUID после создания не меняется.
// Отмена выставляет Active = false, историческая запись сохраняется.
type Subscription struct {
	Address   string // Детерминированный адрес записи
	UserUID   string // UID пользователя, закрепленный при создании
	PlanID    uint32 // План, на который оформлена подписка
	StartTime int64  // Начало действия, unix-секунды
	EndTime   int64  // Конец действия: StartTime + Plan.Duration
	Active    bool   // false после отмены
}

// DummySubscribe — DTO оформления подписки.
type DummySubscribe struct {
	PlanID uint32 `json:"plan_id" validate:"required,gt=0"` // Идентификатор плана
}

// DummyDeposit — DTO пополнения счета.
type DummyDeposit struct {
	Amount uint64 `json:"amount" validate:"required,gt=0"` // Сумма пополнения
}

// DummyWithdraw — DTO вывода средств из хранилища.
type DummyWithdraw struct {
	Amount uint64 `json:"amount" validate:"required,gt=0"` // Сумма вывода
}
