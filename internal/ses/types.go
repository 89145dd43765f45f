package ses

import "errors"

// Common errors
var (
	ErrSgSesNotInstalled = errors.New("sg_ses not found in PATH")
	ErrNoNickname        = errors.New("enclosure has no subenclosure nickname")
)
