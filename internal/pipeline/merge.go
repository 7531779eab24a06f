package pipeline

// mergeStates is the workflow's merge policy, applied by the engine after
// every stage. Each field has an explicit rule:
//
//   - input fields (Question, StoreKind, DSN): keep the creation values; a
//     stage cannot rewrite the request it is serving
//   - derived fields and Err: overwrite, the stage's returned value wins
//   - Log: append-only; every entry the stage received is kept and only
//     entries beyond that point are taken from the stage's output, so the
//     log stays monotone in stage execution order even if a stage rebuilds
//     the slice
func mergeStates(prev, next State) State {
	out := next

	out.Question = prev.Question
	out.StoreKind = prev.StoreKind
	out.DSN = prev.DSN

	merged := make([]string, len(prev.Log), len(prev.Log)+4)
	copy(merged, prev.Log)
	if len(next.Log) > len(prev.Log) {
		merged = append(merged, next.Log[len(prev.Log):]...)
	}
	out.Log = merged

	return out
}
