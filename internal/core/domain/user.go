package domain

import (
	"errors"
	"time"
)

// Role names known to the system.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
	RoleUser     = "USER"
)

// Permission strings attached to roles and checked by the authorization gate.
const (
	PermAlertRead   = "ALERT_READ"
	PermAlertCreate = "ALERT_CREATE"
	PermAlertUpdate = "ALERT_UPDATE"
	PermAlertAssign = "ALERT_ASSIGN"
	PermAlertDelete = "ALERT_DELETE"
	PermSensorRead  = "SENSOR_READ"
	PermSensorWrite = "SENSOR_WRITE"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrPasswordMismatch = errors.New("new passwords do not match")
var ErrInvalidInput = errors.New("invalid input")

// Role couples a role name with its permission set.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// RoleByName returns the built-in permission set for a role name.
// Unknown names get an empty permission set rather than an error so that
// records written by older deployments still deserialize.
func RoleByName(name string) Role {
	switch name {
	case RoleAdmin:
		return Role{Name: RoleAdmin, Permissions: []string{RoleAdmin}}
	case RoleOperator:
		return Role{Name: RoleOperator, Permissions: []string{
			PermAlertRead, PermAlertCreate, PermAlertUpdate,
			PermAlertAssign, PermAlertDelete,
			PermSensorRead, PermSensorWrite,
		}}
	case RoleUser:
		return Role{Name: RoleUser, Permissions: []string{PermAlertRead}}
	default:
		return Role{Name: name}
	}
}

// User models an authenticated actor in the system.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a request. It is
// passed explicitly into every service call that requires one.
type Principal struct {
	UserID      string
	Username    string
	Role        string
	Permissions []string
}

// HasPermission reports whether the principal carries the permission or the
// ADMIN wildcard authority.
func (p Principal) HasPermission(perm string) bool {
	for _, have := range p.Permissions {
		if have == perm || have == RoleAdmin {
			return true
		}
	}
	return false
}
