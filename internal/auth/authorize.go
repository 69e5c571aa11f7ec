package auth

import "context"

// Authorize checks the identity bound to ctx against action.
func Authorize(ctx context.Context, action Action) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	if !Allowed(action, id, true) {
		return id, ErrUnauthorized
	}
	return id, nil
}
