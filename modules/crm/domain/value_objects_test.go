package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rai/bot-order-bridge/modules/crm/domain"
)

func TestNewName_Placeholders(t *testing.T) {
	tests := []struct {
		name            string
		first, last     string
		fallbacks       []string
		wantFirst, want string
	}{
		{"both present", "Anna", "Meier", nil, "Anna", "Anna Meier"},
		{"username fallback", "", "", []string{"@anna_m"}, "anna_m", "anna_m Bot"},
		{"nothing", " ", "", []string{""}, "Customer", "Customer Bot"},
		{"last only", "", "Meier", nil, "Customer", "Customer Meier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := domain.NewName(tt.first, tt.last, tt.fallbacks...)
			assert.Equal(t, tt.wantFirst, n.FirstName())
			assert.Equal(t, tt.want, n.FullName())
		})
	}
}

func TestNewPhone(t *testing.T) {
	assert.Equal(t, "+41791234567", domain.NewPhone(" +41 79 123 45 67 ").String())
	assert.Equal(t, "0791234567", domain.NewPhone("079-123-45-67").String())
	assert.True(t, domain.NewPhone("12").IsZero())
	assert.True(t, domain.NewPhone("").IsZero())
}

func TestNewEmail(t *testing.T) {
	assert.Equal(t, "anna@example.ch", domain.NewEmail(" Anna@Example.CH ").String())
	assert.True(t, domain.NewEmail("not-an-email").IsZero())
}
