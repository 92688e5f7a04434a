// Package willitserver checks, on a best-effort basis, whether values
// passed to and returned from server functions can cross the client/server
// boundary. Failed checks are logged and never block the call.
package willitserver

import "context"

var defaultChecker = NewChecker()

// CanPassInEitherDirection reports whether value is passable in both
// directions using the default Checker.
func CanPassInEitherDirection(value any) bool {
	return defaultChecker.CanPassInEitherDirection(value)
}

// CanPassFromClientToServer checks value with the default Checker.
func CanPassFromClientToServer(ctx context.Context, value any) (bool, error) {
	return defaultChecker.CanPassFromClientToServer(ctx, value)
}

// CanPassFromServerToClient checks value with the default Checker.
func CanPassFromServerToClient(ctx context.Context, value any) (bool, error) {
	return defaultChecker.CanPassFromServerToClient(ctx, value)
}
