// Package statemachine implements finite state machines as immutable
// transition tables.
//
// A Machine does not hold a current state. Callers pass the state they are in
// and get back the state an event leads to, which lets one Machine be shared
// by every request in a server:
//
//	var (
//		Anonymous = statemachine.StringState("anonymous")
//		Member    = statemachine.StringState("member")
//		Join      = statemachine.StringEvent("join")
//	)
//
//	sm := statemachine.MustNew(
//		statemachine.WithTransition(Anonymous, Member, Join,
//			statemachine.WithGuard(func(ctx context.Context, from statemachine.State, e statemachine.Event, data any) bool {
//				return data.(bool)
//			}),
//		),
//	)
//
//	next, err := sm.Fire(ctx, Anonymous, Join, true) // Member, nil
//
// Several transitions may share a source state and event; the first whose
// guards all pass wins. Actions run in order before the new state is
// returned, and an action error aborts the transition.
package statemachine
