// Package hook defines the lifecycle hooks a release run
// exposes to user code and the helpers that invoke them.
//
// Hooks receive a Context with only the next version and
// a command runner. Every command is logged before it
// runs. A gate hook cancels the workflow by returning
// false. A value hook replaces a default. Any hook error
// is fatal to the run.
package hook
