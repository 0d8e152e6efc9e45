// utils/accounts.go
package utils

import "fmt"

// Account types supported by the platform
const (
	AccountTypePlayer  = "player"
	AccountTypeClub    = "club"
	AccountTypeAgent   = "agent"
	AccountTypeAcademy = "academy"
	AccountTypeTrainer = "trainer"
	AccountTypeAdmin   = "admin"
)

// AccountTypeInfo carries everything that used to be decided by scattered
// switch chains: which collection holds the role profile, where the
// dashboard lives, and the UI hints the clients render.
type AccountTypeInfo struct {
	Collection     string
	DashboardRoute string
	Icon           string
	Color          string
}

var accountTypes = map[string]AccountTypeInfo{
	AccountTypePlayer:  {Collection: "players", DashboardRoute: "/dashboard/player", Icon: "sports_soccer", Color: "#1E88E5"},
	AccountTypeClub:    {Collection: "clubs", DashboardRoute: "/dashboard/club", Icon: "shield", Color: "#43A047"},
	AccountTypeAgent:   {Collection: "agents", DashboardRoute: "/dashboard/agent", Icon: "work", Color: "#8E24AA"},
	AccountTypeAcademy: {Collection: "academies", DashboardRoute: "/dashboard/academy", Icon: "school", Color: "#FB8C00"},
	AccountTypeTrainer: {Collection: "trainers", DashboardRoute: "/dashboard/trainer", Icon: "fitness_center", Color: "#E53935"},
	AccountTypeAdmin:   {Collection: "admins", DashboardRoute: "/dashboard/admin", Icon: "admin_panel_settings", Color: "#546E7A"},
}

// GetAccountTypeInfo looks up the registry entry for an account type.
func GetAccountTypeInfo(accountType string) (AccountTypeInfo, error) {
	info, ok := accountTypes[accountType]
	if !ok {
		return AccountTypeInfo{}, fmt.Errorf("unknown account type: %s", accountType)
	}
	return info, nil
}

// IsValidAccountType reports whether the account type is registered.
func IsValidAccountType(accountType string) bool {
	_, ok := accountTypes[accountType]
	return ok
}

// IsSignupAccountType reports whether users may self-register as this type.
// Admin accounts are provisioned manually.
func IsSignupAccountType(accountType string) bool {
	return IsValidAccountType(accountType) && accountType != AccountTypeAdmin
}

// GetDashboardRoute returns the dashboard path for an account type, falling
// back to the player dashboard for unknown values.
func GetDashboardRoute(accountType string) string {
	if info, err := GetAccountTypeInfo(accountType); err == nil {
		return info.DashboardRoute
	}
	return accountTypes[AccountTypePlayer].DashboardRoute
}

// GetProfileCollection returns the Mongo collection that holds the role
// profile for an account type.
func GetProfileCollection(accountType string) (string, error) {
	info, err := GetAccountTypeInfo(accountType)
	if err != nil {
		return "", err
	}
	return info.Collection, nil
}
