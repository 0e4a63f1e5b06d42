package crm_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rai/bot-order-bridge/modules/crm"
)

func TestNew_LogsContactLookupChain(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	// Act
	m := crm.New(crm.Config{Logger: logger})

	// Assert
	assert.Equal(t, []string{"messenger_id", "phone"}, m.Contacts().Strategies())
	assert.Contains(t, buf.String(), `"msg":"contact lookup chain"`)
	assert.Contains(t, buf.String(), `"strategies":["messenger_id","phone"]`)
	assert.Contains(t, buf.String(), `"module":"crm"`)
}
