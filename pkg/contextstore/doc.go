// Package contextstore holds the most recent problem/solution pair per
// conversational session, in memory only. All operations serialize on a
// single store-wide mutex; callers always receive deep copies, never
// references into the store, so entries cannot be mutated from outside.
// Nothing expires on its own: age-based eviction only happens when a
// caller invokes EvictOlderThan.
package contextstore
