package models

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the slice of the hosted identity record this gateway cares
// about. The record itself lives with the identity service.
type User struct {
	ID    string
	Email string
	Role  UserRole
}
