package storage

// AccessController decides ownership and visibility for every read and
// mutating operation. Requester identity is assumed already verified
// upstream; an empty requester means an anonymous caller.
type AccessController struct{}

// AuthorizeRead decides read access to a record. Public objects are
// readable by anyone, including anonymous callers. Private objects
// return ErrAuthenticationRequired for anonymous callers and
// ErrUnauthorized for any identity other than the owner.
func (AccessController) AuthorizeRead(requester string, rec *ObjectRecord) error {
	if rec.Public {
		return nil
	}
	if requester == "" {
		return ErrAuthenticationRequired
	}
	if requester != rec.Owner {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeWrite decides write access (chunk upload, delete). Writes
// require the presented identity to equal the owner; anonymous writes
// are never allowed regardless of visibility.
func (AccessController) AuthorizeWrite(requester string, rec *ObjectRecord) error {
	if requester == "" || requester != rec.Owner {
		return ErrUnauthorized
	}
	return nil
}
