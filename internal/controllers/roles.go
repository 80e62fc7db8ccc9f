package controllers

import "github.com/Ostech2/uhsms/internal/models"

var allowedRoles = map[string]struct{}{
	models.RoleAdmin:        {},
	models.RoleMaleWarden:   {},
	models.RoleFemaleWarden: {},
}

func IsValidRole(role string) bool {
	_, ok := allowedRoles[role]
	return ok
}

var allowedStatuses = map[string]struct{}{
	models.StatusActive:    {},
	models.StatusInactive:  {},
	models.StatusSuspended: {},
}

func IsValidStatus(status string) bool {
	_, ok := allowedStatuses[status]
	return ok
}
