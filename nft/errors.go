package nft

import "errors"

var (
	ErrAlreadyIssued    = errors.New("token already issued")
	ErrNotIssued        = errors.New("token not issued")
	ErrIssuancePending  = errors.New("token issuance pending")
	ErrUnknownCallback  = errors.New("unknown callback")
	ErrInvalidRecipient = errors.New("invalid recipient")
)
