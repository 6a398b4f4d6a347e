package main

import (
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

func TestMirrorInputs(t *testing.T) {
	tests := []struct {
		name string
		in   bonk.Input
		want bonk.Input
	}{
		{"none", bonk.InputNone, bonk.InputNone},
		{"left becomes right", bonk.InputLeft, bonk.InputRight},
		{"right becomes left", bonk.InputRight, bonk.InputLeft},
		{"both stay both", bonk.InputLeft | bonk.InputRight, bonk.InputLeft | bonk.InputRight},
		{"vertical untouched", bonk.InputUp | bonk.InputDown, bonk.InputUp | bonk.InputDown},
		{"mixed", bonk.InputLeft | bonk.InputHeavy, bonk.InputRight | bonk.InputHeavy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mirrorInputs(tc.in); got != tc.want {
				t.Errorf("mirrorInputs(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
