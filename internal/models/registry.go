// Package models содержит доменные структуры эскроу-реестра подписок:
// реестр, тарифные планы, подписки, денежные счета и пользователей,
// а также DTO для входящих JSON-запросов.
package models

// Registry — единственная на развертывание запись реестра.
// OwnerUID назначается при инициализации и больше не меняется,
// NextPlanID строго возрастает на 1 при каждом успешном создании плана.
// VaultNonce — нонс, которым система авторизует списания с хранилища.
type Registry struct {
	Address    string // Детерминированный адрес записи
	OwnerUID   string // UID владельца реестра
	NextPlanID uint32 // Следующий свободный идентификатор плана, начинается с 1
	VaultNonce string // Capability для вывода средств из хранилища
}

// Account — денежный счет по детерминированному адресу.
// Баланс никогда не уходит в минус: условное списание плюс CHECK-ограничение в БД.
type Account struct {
	Address string
	Balance uint64
}
