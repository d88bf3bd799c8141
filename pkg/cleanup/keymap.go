package cleanup

import "slices"

// Reconcile returns a new map whose key set is exactly keys. Values already
// present in m are kept, stale keys are dropped and missing keys get def.
func Reconcile[V any](m map[string]V, keys []string, def V) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
			continue
		}
		out[k] = def
	}
	return out
}

// KeepOnlyKeys returns a copy of m without the keys that are not in keys.
// Unlike Reconcile it never adds entries.
func KeepOnlyKeys[V any](m map[string]V, keys []string) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		if slices.Contains(keys, k) {
			out[k] = v
		}
	}
	return out
}

// ResizeSlots returns a copy of slots with length n: existing values below n
// are preserved, new slots are empty and extra slots are discarded.
func ResizeSlots(slots []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, slots)
	return out
}
