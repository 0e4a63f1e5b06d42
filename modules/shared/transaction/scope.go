// Package transaction lets application handlers group repository calls without
// knowing which store backs them.
package transaction

import "context"

// Scope runs fn inside one transaction. The ctx handed to fn carries the
// transaction; repositories that find one there join it instead of opening
// their own. Implementations may retry fn, so fn must be safe to run again.
type Scope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// ScopeFunc adapts a plain function to Scope.
type ScopeFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f ScopeFunc) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Passthrough runs fn directly. Repositories then use single-use reads and
// standalone writes.
var Passthrough Scope = ScopeFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})

// OrPassthrough returns s, or Passthrough when s is nil.
func OrPassthrough(s Scope) Scope {
	if s == nil {
		return Passthrough
	}
	return s
}

// ExecuteWithResult is Execute for functions that produce a value.
func ExecuteWithResult[T any](ctx context.Context, scope Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}
