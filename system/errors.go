package system

import "errors"

var (
	ErrIssueCost       = errors.New("invalid issue cost")
	ErrInvalidName     = errors.New("invalid token name")
	ErrInvalidTicker   = errors.New("invalid ticker name")
	ErrInvalidType     = errors.New("invalid token type")
	ErrInvalidDecimals = errors.New("invalid number of decimals")
)
