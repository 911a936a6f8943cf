package crypto

import "errors"

var ErrPasswordMismatch = errors.New("password does not match")
