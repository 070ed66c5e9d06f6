package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	guildAdmins := []string{"role-admin"}
	globalAdmins := []string{"role-global"}
	devs := []string{"dev-1"}

	assert.Equal(t, DeveloperPermission, CheckPermission(nil, "dev-1", guildAdmins, globalAdmins, devs))
	assert.Equal(t, AdminPermission, CheckPermission([]string{"x", "role-admin"}, "u", guildAdmins, globalAdmins, devs))
	assert.Equal(t, AdminPermission, CheckPermission([]string{"role-global"}, "u", guildAdmins, globalAdmins, devs))
	assert.Equal(t, GuestPermission, CheckPermission([]string{"x"}, "u", guildAdmins, globalAdmins, devs))

	// strings.Split("", ",") yields [""]; an empty ID must not match.
	assert.Equal(t, GuestPermission, CheckPermission([]string{""}, "", []string{""}, nil, []string{""}))

	assert.True(t, CanModerate(AdminPermission))
	assert.False(t, CanModerate(GuestPermission))
}
