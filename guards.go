package automaton

// Never returns a guard that never blocks
func Never[K comparable]() Guard[K] {
	return func(Event[K], *Context) bool { return false }
}

// Not inverts g: the transition is blocked exactly when g would let it through.
func Not[K comparable](g Guard[K]) Guard[K] {
	return func(ev Event[K], rc *Context) bool {
		return !g(ev, rc)
	}
}

// AnyOf blocks when any of the guards blocks, i.e. the transition fires only
// when every guard lets it through. Nil guards are skipped.
func AnyOf[K comparable](guards ...Guard[K]) Guard[K] {
	return func(ev Event[K], rc *Context) bool {
		for _, g := range guards {
			if g != nil && g(ev, rc) {
				return true
			}
		}
		return false
	}
}

// Unless blocks while the context flag key is set to true
func Unless[K comparable](key string) Guard[K] {
	return func(_ Event[K], rc *Context) bool {
		return rc.GetBool(key, false)
	}
}
