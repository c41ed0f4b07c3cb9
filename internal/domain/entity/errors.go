package entity

import "errors"

var (
	ErrInput           = errors.New("missing API key or stock name")
	ErrMalformedOutput = errors.New("malformed model output")
	ErrUnknownTool     = errors.New("no such tool")
	ErrToolFailed      = errors.New("tool failed")
	ErrEmptyResult     = errors.New("empty result")
	ErrBudgetExceeded  = errors.New("step budget exceeded without a final answer")
	ErrUpstream        = errors.New("upstream failure")
	ErrNotFound        = errors.New("not found")
)
