package flash

// Driver is the contract the flash block driver must satisfy. It is an
// external collaborator: the application manager never
// talks to raw NVM directly, only through this interface, the same way the
// teacher depends on foundation.Dispatcher / foundation.MeshDelegator at
// its own subsystem boundaries instead of concrete transports
// (kernel/threads/foundation/types.go).
type Driver interface {
	// ReadHeader returns the decoded header for the given slot, or an
	// error if the slot cannot be read at all (a torn or unprogrammed
	// slot still returns a Header — callers check HasValidMagic).
	ReadHeader(slot int) (*Header, error)

	// ReadBody returns n bytes of the slot's payload (binary + GOT +
	// relocation table), starting immediately after the header.
	ReadBody(slot int, n int) ([]byte, error)
}
