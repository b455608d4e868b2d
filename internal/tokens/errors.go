package tokens

import "errors"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrNotAdmin     = errors.New("token does not grant admin access")
)
