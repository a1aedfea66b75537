package ports

import "github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

type TokenService interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}
