package models

// Доменные события, публикуемые после успешного завершения операции.

// PlanCreated публикуется при создании нового тарифного плана.
type PlanCreated struct {
	PlanID   uint32 `json:"plan_id"`
	Price    uint64 `json:"price"`
	Duration int64  `json:"duration"`
}

// Subscribed публикуется при успешном оформлении подписки.
type Subscribed struct {
	UserUID string `json:"user_uid"`
	PlanID  uint32 `json:"plan_id"`
	EndTime int64  `json:"end_time"`
}

// SubscriptionCancelled публикуется при отмене подписки пользователем.
type SubscriptionCancelled struct {
	UserUID string `json:"user_uid"`
}
