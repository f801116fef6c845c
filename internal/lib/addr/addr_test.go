package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive_Deterministic(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{
			name: "одинаковые входные данные дают одинаковый адрес",
			a:    Subscription("user-1"),
			b:    Subscription("user-1"),
			same: true,
		},
		{
			name: "разные пользователи дают разные адреса",
			a:    Subscription("user-1"),
			b:    Subscription("user-2"),
			same: false,
		},
		{
			name: "разные пространства имен дают разные адреса при одном ключе",
			a:    Subscription("user-1"),
			b:    Account("user-1"),
			same: false,
		},
		{
			name: "разные планы дают разные адреса",
			a:    Plan(1),
			b:    Plan(2),
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, tt.a, tt.b)
			} else {
				assert.NotEqual(t, tt.a, tt.b)
			}
		})
	}
}

func TestDerive_NoKeyConcatenationAmbiguity(t *testing.T) {
	// Разделитель после тега не дает "plan"+"1" склеиться с "pla"+"n1".
	assert.NotEqual(t, Derive("plan", []byte("1")), Derive("pla", []byte("n1")))
}

func TestSingletonAddresses(t *testing.T) {
	assert.Equal(t, Registry(), Registry())
	assert.Equal(t, Vault(), Vault())
	assert.NotEqual(t, Registry(), Vault())
	assert.Len(t, Registry(), 64)
}
