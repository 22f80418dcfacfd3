/*
NAME
  temporalstate.go

DESCRIPTION
  temporalstate.go implements the per-plane temporal state machine spec.md
  §4.9 diagrams: start/IDR/Intra resets to TEMPORAL_REFRESH (buffer
  cleared, every block INTR); the next Inter/Pred/Bidi picture moves to
  TEMPORAL_ACTIVE; an IDR/Intra picture or temporal_signalling_present
  going false moves back to TEMPORAL_REFRESH.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import "github.com/ausocean/lcevc/temporal"

// TemporalState is one plane's position in the temporal state machine.
type TemporalState int

// States the machine can be in.
const (
	TemporalRefresh TemporalState = iota
	TemporalActive
)

// planeTemporal holds the accumulated prediction buffer and state for
// one processed plane's LoQ-2 temporal path.
type planeTemporal struct {
	state  TemporalState
	buffer []int16
	width  int
	height int
}

// newPlaneTemporal returns a plane's temporal state in TEMPORAL_REFRESH
// with a zeroed buffer, the state every plane starts in and returns to
// on IDR/Intra.
func newPlaneTemporal(width, height int) *planeTemporal {
	return &planeTemporal{state: TemporalRefresh, buffer: temporal.NewBuffer(width, height), width: width, height: height}
}

// transition advances t's state for a picture of the given key-ness and
// temporal-signalling presence, per spec.md §4.9's diagram, resetting
// the buffer whenever the machine (re-)enters TEMPORAL_REFRESH.
func (t *planeTemporal) transition(isKeyPicture, temporalSignallingPresent bool) {
	switch {
	case isKeyPicture:
		t.state = TemporalRefresh
	case t.state == TemporalActive && !temporalSignallingPresent:
		t.state = TemporalRefresh
	case t.state == TemporalRefresh && temporalSignallingPresent:
		t.state = TemporalActive
	}
	if t.state == TemporalRefresh {
		t.buffer = temporal.NewBuffer(t.width, t.height)
	}
}

// perPictureIntra reports whether every block this picture must be
// treated as INTR regardless of the per-block cost decision, true only
// immediately after a refresh (the picture that caused the refresh
// itself, i.e. any IDR/Intra picture).
func (t *planeTemporal) perPictureIntra(isKeyPicture bool) bool {
	return isKeyPicture || t.state == TemporalRefresh
}

// update folds this picture's reconstructed residuals and final
// per-block mask into the accumulated buffer, for the next picture to
// predict from.
func (t *planeTemporal) update(residuals []int16, mask []temporal.Mask, transformBlockSize int, perPictureIntra, useReducedSignalling bool) {
	t.buffer = temporal.UpdateBuffer(t.buffer, residuals, mask, t.width, t.height, transformBlockSize, perPictureIntra, useReducedSignalling)
}
