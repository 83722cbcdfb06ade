// Package common — errors.go defines the domain errors shared by all
// features. All three are expected, user-facing outcomes: the transport
// layer maps them to friendly responses, never to crashes.
package common

import "errors"

var (
	// ErrInvalidInput — empty group or user identifier on an incoming
	// message. The caller rejects the message without side effects.
	ErrInvalidInput = errors.New("groupId e userId são obrigatórios")

	// ErrUnknownGroup — operation references a group that was never
	// provisioned. The engine does not auto-create groups.
	ErrUnknownGroup = errors.New("grupo não encontrado")

	// ErrRestorationLimitExceeded — the monthly restoration quota is spent.
	// Informational and non-retryable until the next calendar month.
	ErrRestorationLimitExceeded = errors.New("limite de restaurações do mês atingido")
)
