package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTypeRegistry(t *testing.T) {
	cases := []struct {
		accountType string
		collection  string
		dashboard   string
	}{
		{AccountTypePlayer, "players", "/dashboard/player"},
		{AccountTypeClub, "clubs", "/dashboard/club"},
		{AccountTypeAgent, "agents", "/dashboard/agent"},
		{AccountTypeAcademy, "academies", "/dashboard/academy"},
		{AccountTypeTrainer, "trainers", "/dashboard/trainer"},
		{AccountTypeAdmin, "admins", "/dashboard/admin"},
	}

	for _, tc := range cases {
		info, err := GetAccountTypeInfo(tc.accountType)
		require.NoError(t, err, tc.accountType)
		assert.Equal(t, tc.collection, info.Collection)
		assert.Equal(t, tc.dashboard, info.DashboardRoute)
		assert.NotEmpty(t, info.Icon)
		assert.NotEmpty(t, info.Color)
	}
}

func TestUnknownAccountType(t *testing.T) {
	_, err := GetAccountTypeInfo("manager")
	assert.Error(t, err)
	assert.False(t, IsValidAccountType("manager"))
	assert.False(t, IsValidAccountType(""))
}

func TestSignupAccountTypes(t *testing.T) {
	for _, accountType := range []string{AccountTypePlayer, AccountTypeClub, AccountTypeAgent, AccountTypeAcademy, AccountTypeTrainer} {
		assert.True(t, IsSignupAccountType(accountType), accountType)
	}
	assert.False(t, IsSignupAccountType(AccountTypeAdmin), "admins are provisioned manually")
	assert.False(t, IsSignupAccountType("manager"))
}

func TestDashboardRouteFallback(t *testing.T) {
	assert.Equal(t, "/dashboard/player", GetDashboardRoute("unknown"))
	assert.Equal(t, "/dashboard/club", GetDashboardRoute(AccountTypeClub))
}

func TestGetProfileCollection(t *testing.T) {
	coll, err := GetProfileCollection(AccountTypeAcademy)
	require.NoError(t, err)
	assert.Equal(t, "academies", coll)

	_, err = GetProfileCollection("manager")
	assert.Error(t, err)
}
