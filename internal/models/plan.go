package models

// Plan — тарифный план подписки.
// PlanID уникален и неизменяем; после создания меняться может только флаг Active.
// Duration хранится в секундах; неположительные значения модель не запрещает —
// подписка на такой план истекает немедленно.
type Plan struct {
	Address  string // Детерминированный адрес записи плана
	PlanID   uint32 // Идентификатор, выданный счетчиком реестра
	Price    uint64 // Стоимость подписки
	Duration int64  // Длительность в секундах
	Active   bool   // Доступен ли план для подписки
}

// DummyPlan — DTO создания плана из JSON-запроса.
// Нулевая цена означает бесплатный план; неположительная длительность
// допустима — такая подписка истекает немедленно.
type DummyPlan struct {
	Price    uint64 `json:"price"`    // Стоимость
	Duration int64  `json:"duration"` // Длительность в секундах
}
