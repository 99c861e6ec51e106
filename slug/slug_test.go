package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane-doe"},
		{"Héllo_World  Café", "hello-world-cafe"},
		{"  --Already--Slugged--  ", "already-slugged"},
		{"UPPER CASE", "upper-case"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
		{"äöü ÄÖÜ ß", "aou-aou-ss"},
		{"Ævar Þór", "aevar-thor"},
		{"Łódź Żółć", "lodz-zolc"},
		{"Ελληνικά", "ellhnika"},
		{"Привет мир", "privet-mir"},
		{"Жёлтый ёж", "zhyoltyj-yozh"},
		{"© 2024", "(c)-2024"},
		{"", ""},
		{"---", ""},
		{"ьъ", ""},
		{"emoji 🌿 stays", "emoji-🌿-stays"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Jane Doe",
		"Héllo_World  Café",
		"Привет мир",
		"© COPY",
		"__-- mixed --__",
		"Ævar Þór Ψυχή",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeShape(t *testing.T) {
	inputs := []string{
		"A  B   C",
		"--lead and trail--",
		"MiXeD_CaSe",
		"ΣΊΣΥΦΟΣ",
		"много    пробелов",
	}
	for _, in := range inputs {
		got := Normalize(in)
		assert.NotContains(t, got, "--", "input %q", in)
		assert.False(t, strings.HasPrefix(got, "-"), "input %q", in)
		assert.False(t, strings.HasSuffix(got, "-"), "input %q", in)
		assert.Equal(t, strings.ToLower(got), got, "input %q", in)
	}
}
