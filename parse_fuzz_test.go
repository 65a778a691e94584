package apecrunch_test

import (
	"strings"
	"testing"

	"github.com/openapeshop/apecrunch"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("1×2")
	f.Add("x = 2√2")
	f.Fuzz(func(t *testing.T, s string) {
		apecrunch.Parse(strings.NewReader(s))
	})
}
