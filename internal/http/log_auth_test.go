package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLogging(t *testing.T) {
	ta := newTestApp(t)

	failLogs := captureLogs(t, func() {
		ta.postForm(t, "/login", "email=admin@heavyequip.test&password=Wr0ngPass!")
	})
	e, ok := findLog(failLogs, "auth.login.fail")
	require.True(t, ok, "auth.login.fail log not found")
	assert.Equal(t, "warn", e.Level)
	assert.Equal(t, "admin@heavyequip.test", e.Fields["email"])
	assert.NotContains(t, e.Fields, "password")

	formatLogs := captureLogs(t, func() {
		ta.postForm(t, "/login", "email=admin@heavyequip.test&password=short")
	})
	e, ok = findLog(formatLogs, "auth.login.fail")
	require.True(t, ok)
	assert.Equal(t, "bad_password_format", e.Fields["reason"])

	okLogs := captureLogs(t, func() {
		ta.postForm(t, "/login", "email=admin@heavyequip.test&password=Passw0rd!")
	})
	e, ok = findLog(okLogs, "auth.login.success")
	require.True(t, ok, "auth.login.success log not found")
	assert.Equal(t, "audit", e.Level)
	assert.Equal(t, "admin@heavyequip.test", e.Fields["email"])
	assert.NotEmpty(t, e.ReqID)
}
