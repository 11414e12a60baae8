// Package auth authenticates administrators against the users table.
//
// Passwords are stored as Argon2id hashes. Mutating API routes are guarded
// with HTTP basic auth through RequireUser:
//
//	provider := auth.NewLocalProvider(db)
//	api.Put("/settings/:key", auth.RequireUser(provider), handler.Put)
package auth
