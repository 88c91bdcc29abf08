// Package auth provides account registration, credential checks and
// session-cookie authentication for the HTTP layer.
//
// Passwords are stored as bcrypt hashes. Sessions live in a local sqlite
// store managed by scs; the SessionLoadSave Gin middleware loads them into
// the request context and commits cookie changes on the way out. The
// Middleware type resolves the session user for every request and offers
// RequireAuth and RequireRole gates for protected route groups.
//
// Login attempts are rate limited per IP+email with a sliding window, and
// state-changing requests are CSRF protected via gorilla/csrf.
package auth
