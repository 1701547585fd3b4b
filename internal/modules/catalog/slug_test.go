package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Leather Phone Case":    "leather-phone-case",
		"  USB-C   Charger  ":   "usb-c-charger",
		"Crème Brûlée Keyring":  "creme-brulee-keyring",
		"Earbuds (2nd gen) 50%": "earbuds-2nd-gen-50",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
