/*
NAME
  nal.go

DESCRIPTION
  nal.go implements the enhancement payload's NAL/SEI framing: RBSP escape
  and unescape, wrapping a serialized payload as a dedicated NAL unit or as
  a registered/unregistered SEI message, and scanning a host access unit to
  find and extract whichever framing is present. Grounded on the teacher's
  H.264 byte-stream lexer (codec/h264/lex.go, codec/h264/parse.go), which
  scans the same 00 00 01 start-code structure for a different purpose
  (splitting access units instead of framing one payload).

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nal implements the framing that carries a serialized enhancement
// payload inside a host AVC/HEVC/VVC access unit: NAL unit types 28/29,
// registered SEI (payload type 4), unregistered SEI, and the RBSP
// escape/unescape transform common to all three.
package nal

import (
	"bytes"

	"github.com/pkg/errors"
)

// NAL unit types carrying the enhancement payload, per spec.md §4.8.
const (
	TypeNonIDR = 28
	TypeIDR    = 29
)

// RegisteredSEIHeader is the four-byte payload-type/payload-size header a
// registered SEI message carrying the enhancement payload begins with.
var RegisteredSEIHeader = [4]byte{0xb4, 0x00, 0x50, 0x00}

// UnregisteredSEIUUID identifies an unregistered SEI message as carrying
// the enhancement payload.
var UnregisteredSEIUUID = [16]byte{
	0xa7, 0xc4, 0x6d, 0xed, 0x49, 0xd8, 0x38, 0xeb,
	0x9a, 0xad, 0x6d, 0xa6, 0x84, 0x97, 0xa7, 0x54,
}

var startCode = [3]byte{0x00, 0x00, 0x01}

// EscapeRBSP applies the emulation-prevention transform: a 0x03 byte is
// inserted after any run of two 0x00 bytes that would otherwise be
// followed by a byte <= 0x03, then a single 0x80 stop-bit byte is
// appended.
func EscapeRBSP(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+len(payload)/2+1)
	zeros := 0
	for _, b := range payload {
		if zeros >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	out = append(out, 0x80)
	return out
}

// UnescapeRBSP reverses EscapeRBSP: it strips the trailing 0x80 stop bit
// and removes every emulation-prevention 0x03 byte.
func UnescapeRBSP(data []byte) ([]byte, error) {
	if len(data) == 0 || data[len(data)-1] != 0x80 {
		return nil, errors.New("nal: rbsp missing trailing stop bit")
	}
	data = data[:len(data)-1]
	out := make([]byte, 0, len(data))
	zeros := 0
	for i := 0; i < len(data); i++ {
		b := data[i]
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out, nil
}

// WrapUnit frames payload as a dedicated enhancement NAL unit: a start
// code, the one-byte NAL header (forbidden_zero_bit=0, nal_ref_idc=0, the
// type selected by idr), and the RBSP-escaped payload.
func WrapUnit(payload []byte, idr bool) []byte {
	typ := byte(TypeNonIDR)
	if idr {
		typ = byte(TypeIDR)
	}
	out := make([]byte, 0, 4+1+len(payload)+len(payload)/2+1)
	out = append(out, startCode[:]...)
	out = append(out, typ&0x1f)
	out = append(out, EscapeRBSP(payload)...)
	return out
}

// WrapRegisteredSEI frames payload as a registered SEI message (SEI NAL
// unit type 6) carrying RegisteredSEIHeader ahead of the payload.
func WrapRegisteredSEI(payload []byte) []byte {
	body := make([]byte, 0, len(RegisteredSEIHeader)+len(payload))
	body = append(body, RegisteredSEIHeader[:]...)
	body = append(body, payload...)
	return wrapSEI(body)
}

// WrapUnregisteredSEI frames payload as an unregistered SEI message (SEI
// payload type 5) carrying UnregisteredSEIUUID ahead of the payload.
func WrapUnregisteredSEI(payload []byte) []byte {
	const unregisteredType = 5
	body := make([]byte, 0, 1+len(UnregisteredSEIUUID)+len(payload))
	body = append(body, unregisteredType)
	body = append(body, UnregisteredSEIUUID[:]...)
	body = append(body, payload...)
	return wrapSEI(body)
}

func wrapSEI(body []byte) []byte {
	const seiType = 6
	out := make([]byte, 0, 4+1+len(body)+len(body)/2+1)
	out = append(out, startCode[:]...)
	out = append(out, seiType)
	out = append(out, EscapeRBSP(body)...)
	return out
}

// unit is one lexed NAL unit: its type (low 5 bits of the header byte) and
// its escaped RBSP body (header byte excluded).
type unit struct {
	typ  byte
	rbsp []byte
}

// scanUnits splits an access unit byte stream on 00 00 01 / 00 00 00 01
// start codes, mirroring the scanning loop in codec/h264/parse.go's
// frameScanner but collecting every unit instead of stopping at the
// first non-delimiter type.
func scanUnits(au []byte) []unit {
	var units []unit
	starts := findStartCodes(au)
	for i, s := range starts {
		bodyStart := s + len(startCode)
		bodyEnd := len(au)
		if i+1 < len(starts) {
			bodyEnd = starts[i+1]
		}
		if bodyStart >= bodyEnd {
			continue
		}
		header := au[bodyStart]
		units = append(units, unit{typ: header & 0x1f, rbsp: au[bodyStart+1 : bodyEnd]})
	}
	return units
}

func findStartCodes(au []byte) []int {
	var starts []int
	for i := 0; i+len(startCode) <= len(au); i++ {
		if bytes.Equal(au[i:i+len(startCode)], startCode[:]) {
			starts = append(starts, i)
			i += len(startCode) - 1
		}
	}
	return starts
}

// FindEnhancementPayload scans au for the enhancement payload, in whichever
// of the three framings (dedicated NAL, registered SEI, unregistered SEI)
// is present, and returns the unescaped payload bytes.
func FindEnhancementPayload(au []byte) ([]byte, error) {
	for _, u := range scanUnits(au) {
		switch u.typ {
		case TypeNonIDR, TypeIDR:
			return UnescapeRBSP(u.rbsp)
		case 6:
			body, err := UnescapeRBSP(u.rbsp)
			if err != nil {
				return nil, err
			}
			if len(body) >= len(RegisteredSEIHeader) && bytes.Equal(body[:len(RegisteredSEIHeader)], RegisteredSEIHeader[:]) {
				return body[len(RegisteredSEIHeader):], nil
			}
			if len(body) >= 1+len(UnregisteredSEIUUID) && body[0] == 5 && bytes.Equal(body[1:1+len(UnregisteredSEIUUID)], UnregisteredSEIUUID[:]) {
				return body[1+len(UnregisteredSEIUUID):], nil
			}
		}
	}
	return nil, errors.New("nal: no enhancement payload found in access unit")
}

// NAL unit types that make up the host stream's parameter-set prefix the
// enhancement NAL must be inserted after.
const (
	typeAccessUnitDelimiter = 9
	typeSPS                 = 7
	typePPS                 = 8
)

// InsertAfterParameterSets inserts enhancement (a fully-framed NAL/SEI unit
// from WrapUnit/WrapRegisteredSEI/WrapUnregisteredSEI) into au immediately
// after the last leading AUD/SPS/PPS unit and before the first slice,
// mirroring spec.md §4.9's "after AUD/SPS/PPS, before first slice"
// placement rule.
func InsertAfterParameterSets(au, enhancement []byte) []byte {
	starts := findStartCodes(au)
	insertPos := 0
	for i, s := range starts {
		bodyStart := s + len(startCode)
		if bodyStart >= len(au) {
			break
		}
		typ := au[bodyStart] & 0x1f
		if typ != typeAccessUnitDelimiter && typ != typeSPS && typ != typePPS {
			break
		}
		if i+1 < len(starts) {
			insertPos = starts[i+1]
		} else {
			insertPos = len(au)
		}
	}
	out := make([]byte, 0, len(au)+len(enhancement))
	out = append(out, au[:insertPos]...)
	out = append(out, enhancement...)
	out = append(out, au[insertPos:]...)
	return out
}
