package resolve

// Renders returns the number of times a type has been rendered by t.
func Renders(t *Types) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.renders
}

// ResultTypes exposes the type cache backing r.
func ResultTypes(r *Result) *Types {
	return r.types
}
