// Package resource defines the opaque GPU resource identities the render
// graph reasons about: handles, kinds, and the tagged descriptor that
// travels alongside a handle everywhere a pass declares it.
package resource

import "fmt"

// Kind tags what a Handle identifies. Blas/Tlas handles carry no
// descriptor of their own (acceleration structures are described entirely
// by the backend); an Info of either kind has no usage bits, so it is in
// neither a pass's read set nor its write set and creates no dependencies.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindImage
	KindBlas
	KindTlas
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage:
		return "image"
	case KindBlas:
		return "blas"
	case KindTlas:
		return "tlas"
	default:
		return "unknown"
	}
}

// Handle is an opaque, comparable resource identity. Two handles refer to
// the same GPU resource iff they compare equal with ==; this is the only
// notion of identity the render graph uses. Handle is intentionally a bare
// value type (kind + id) so it can be used directly as a map key — the
// hashing of the backing resource description (image/buffer descriptors)
// is the backend's concern, not this package's.
type Handle struct {
	kind Kind
	id   uint64
}

// NewHandle constructs a Handle for a given kind and backend-assigned id.
// Callers (normally the backend or a resource registry above this package)
// are responsible for ensuring id uniqueness within a frame.
func NewHandle(kind Kind, id uint64) Handle {
	return Handle{kind: kind, id: id}
}

func (h Handle) Kind() Kind { return h.kind }
func (h Handle) ID() uint64 { return h.id }

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.kind, h.id)
}
