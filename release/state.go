package release

// State is a step of a workflow run.
type State string

// Workflow states. Prepare runs Reconciling through Done;
// publish runs HookGate, ReleaseCreate, NotifyLoop,
// HookAfter and Done. Cancelled is only reachable from
// HookGate.
const (
	Reconciling   State = "RECONCILING"
	HookGate      State = "HOOK_GATE"
	ChangelogStep State = "CHANGELOG"
	CommitPush    State = "COMMIT_PUSH"
	PRCreate      State = "PR_CREATE"
	ReleaseCreate State = "RELEASE_CREATE"
	NotifyLoop    State = "NOTIFY_LOOP"
	HookAfter     State = "HOOK_AFTER"
	Done          State = "DONE"
	Cancelled     State = "CANCELLED"
)
