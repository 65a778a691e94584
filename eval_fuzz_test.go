package apecrunch_test

import (
	"testing"

	"github.com/openapeshop/apecrunch"
)

func FuzzEval(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("x = 1/3")
	f.Fuzz(func(t *testing.T, s string) {
		apecrunch.EvalString(s, apecrunch.SetVar("x", apecrunch.NewInt(0)))
	})
}
