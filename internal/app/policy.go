package app

import "github.com/dkeye/Karaoke/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(conn domain.ConnID) BackpressureAction
}

// SimplePolicy drops slow connections; the lifecycle path then treats
// them like any other disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return KickMember
}
