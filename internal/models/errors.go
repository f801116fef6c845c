package models

// DomainError — терминальная ошибка операции: машиночитаемый код
// плюс человекочитаемое сообщение. Операция, вернувшая такую ошибку,
// не оставляет частичных эффектов.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Таксономия ошибок домена. Сравнивать через errors.Is — значения-синглтоны.
var (
	// ErrUnauthorized — вызывающий не совпадает с идентичностью, закрепленной за записью.
	ErrUnauthorized = &DomainError{Code: "UNAUTHORIZED", Message: "caller is not the bound identity"}
	// ErrAlreadyInitialized — реестр уже существует, повторная инициализация запрещена.
	ErrAlreadyInitialized = &DomainError{Code: "ALREADY_INITIALIZED", Message: "registry already initialized"}
	// ErrInvalidPlanID — запрошенный plan_id не совпадает с хранимым идентификатором плана.
	ErrInvalidPlanID = &DomainError{Code: "INVALID_PLAN_ID", Message: "invalid plan id"}
	// ErrPlanInactive — план существует, но деактивирован.
	ErrPlanInactive = &DomainError{Code: "PLAN_INACTIVE", Message: "plan does not exist or is inactive"}
	// ErrSubscriptionAlreadyExists — адрес подписки пользователя уже занят.
	ErrSubscriptionAlreadyExists = &DomainError{Code: "SUBSCRIPTION_ALREADY_EXISTS", Message: "subscription already exists for this user"}
	// ErrNoActiveSubscription — нечего отменять, подписка уже неактивна.
	ErrNoActiveSubscription = &DomainError{Code: "NO_ACTIVE_SUBSCRIPTION", Message: "no active subscription to cancel"}
	// ErrPaymentFailed — перевод средств не прошел, у плательщика не хватает баланса.
	ErrPaymentFailed = &DomainError{Code: "PAYMENT_FAILED", Message: "payment transfer failed"}
	// ErrInsufficientVaultBalance — хранилище не покрывает запрошенную сумму вывода.
	ErrInsufficientVaultBalance = &DomainError{Code: "INSUFFICIENT_VAULT_BALANCE", Message: "vault balance does not cover requested amount"}
	// ErrRecordNotFound — запись по детерминированному адресу не найдена.
	ErrRecordNotFound = &DomainError{Code: "RECORD_NOT_FOUND", Message: "record not found"}
)
