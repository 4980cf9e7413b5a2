package service

import "errors"

var (
	ErrNotFound           = errors.New("error not found")
	ErrInvalidTransaction = errors.New("error invalid transaction")
	ErrNoPrices           = errors.New("error no market prices available")
)
