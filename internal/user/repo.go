package user

import (
	"context"

	"github.com/antonminaichev/laundry-orders/internal/types/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByLogin(ctx context.Context, login string) (*user.User, error)
}
