package caseselection

import "errors"

var (
	// ErrInvalidConfig is returned when a requested count cannot be satisfied
	// and capping is not the strategy's policy
	ErrInvalidConfig = errors.New("invalid selection config")
	// ErrEmptyCorpus is returned when a lexical index is built over no documents
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrEmptyPool is returned when a candidate or query pool is empty
	ErrEmptyPool = errors.New("empty pool")
	// ErrNotImplemented marks reserved strategies
	ErrNotImplemented = errors.New("strategy not implemented")
)
