package sim

// RequestGenerator produces zero or more new requests per tick. It is
// an external collaborator: the engine consumes the interface and never
// inspects how arrivals are sampled. Implementations must not block;
// see the workload package for the provided generators.
type RequestGenerator interface {
	MaybeGenerate(now int64) []*Request
}
