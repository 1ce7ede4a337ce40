package components

// Body holds the shape of a drawable cone-like shard.
type Body struct {
	Radius float64
	Height float64
}
