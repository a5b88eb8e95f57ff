package auth

import "context"

type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var accountContextKey = &contextKey{name: "auth_account"}

// WithAccount returns a context carrying the resolved account.
func WithAccount(ctx context.Context, acct *Account) context.Context {
	return context.WithValue(ctx, accountContextKey, acct)
}

// AccountFromContext returns the account resolved by the access guard.
// The second return value is false when the request was not authenticated.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	acct, ok := ctx.Value(accountContextKey).(*Account)
	return acct, ok
}
