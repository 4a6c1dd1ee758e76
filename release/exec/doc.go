// Package exec runs external commands with slog tracing of every invocation.
// Ex is the primitive; In binds it to a working directory so it can be handed
// around as a Func.
package exec
