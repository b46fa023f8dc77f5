package auth

import (
	"context"

	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/gateway"
)

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// RedirectToEntry returns the gateway hook that sends an evicted user back to the entry point.
func RedirectToEntry(nav Navigator) gateway.SessionEndedFunc {
	return func(ctx context.Context) {
		if nav != nil {
			nav.Navigate(ctx, access.EntryPoint)
		}
	}
}
