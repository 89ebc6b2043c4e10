// Package policy decides whether an agent tool call may reach the cluster.
//
// The package is built around three pieces:
//
//   - [Tables] holds the static rule data: forbidden kinds and plurals, the
//     read and write verb sets, per-action patch allow-lists, numeric bounds
//     and the bulk-selector argument keys. Tables are immutable once built.
//   - [RequestContext] is an immutable description of a single call.
//   - [Gate] runs an ordered chain of checks over a RequestContext and returns
//     nil or exactly one [*Denial].
//
// # Check Order
//
// The gate evaluates its checks in a fixed order and stops at the first
// failure:
//
//  1. action allow-list (ActionNotAllowed, GateError for an empty verb)
//  2. forbidden kind (ForbiddenKind)
//  3. forbidden plural (ForbiddenKind)
//  4. scope (MissingScope)
//  5. write approval (ApprovalRequired)
//  6. bulk argument keys (BulkOperationBlocked)
//  7. patch intent, for verb=patch only (InvalidPatchIntent)
//
// Forbidden resource checks run before scope and approval so a request for a
// forbidden kind never learns whether the object would have been mutable.
//
// # Usage
//
//	gate := policy.NewGate(policy.DefaultTables())
//	rc := policy.NewRequestContext("k8s_delete", "delete",
//	    policy.WithKind("Pod"),
//	    policy.WithNamespace("default"),
//	    policy.WithName("web-0"),
//	    policy.WithApproval(true),
//	    policy.WithArguments(args),
//	)
//	if err := gate.Enforce(rc); err != nil {
//	    // err is a *policy.Denial
//	}
//
// The gate performs no I/O. It is safe for concurrent use.
package policy
