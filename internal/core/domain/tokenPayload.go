package domain

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	Admin   UserRole = "ADMIN"
	AppUser UserRole = "USER"
)

type TokenPayload struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Role   UserRole
}
