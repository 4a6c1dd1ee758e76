package git

// ParseBranchesForTest exposes parseBranches.
var ParseBranchesForTest = parseBranches
