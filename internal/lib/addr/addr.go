// Package addr вычисляет детерминированные адреса записей реестра.
//
// Адрес — это hex от sha256 над тегом пространства имен и ключевым материалом.
// Любые два вызывающих, знающие одинаковые входные данные, получают один и тот
// же адрес, поэтому записи ищутся без отдельного индекса, а уникальность адреса
// гарантирует «не более одной записи на ключ».
package addr

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Теги пространств имен записей.
const (
	nsRegistry     = "registry"
	nsVault        = "vault"
	nsPlan         = "plan"
	nsSubscription = "user_subscription"
	nsAccount      = "account"
)

// Derive возвращает адрес записи: hex(sha256(namespace || 0x00 || key...)).
// Разделитель исключает склейку соседних полей ключа.
func Derive(namespace string, key ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	for _, k := range key {
		h.Write(k)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Registry возвращает адрес единственной записи реестра.
func Registry() string {
	return Derive(nsRegistry)
}

// Vault возвращает адрес счета-хранилища собранных платежей.
func Vault() string {
	return Derive(nsVault)
}

// Plan возвращает адрес записи плана по его идентификатору.
func Plan(planID uint32) string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], planID)
	return Derive(nsPlan, b[:])
}

// Subscription возвращает адрес записи подписки пользователя.
// Один UID — один адрес, отсюда инвариант «не более одной подписки на пользователя».
func Subscription(userUID string) string {
	return Derive(nsSubscription, []byte(userUID))
}

// Account возвращает адрес денежного счета пользователя.
func Account(userUID string) string {
	return Derive(nsAccount, []byte(userUID))
}
