package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"1024", 1024},
		{"1 KB", KB},
		{"100MB", 100 * MB},
		{"1.5GB", GB + GB/2},
		{"2TB", 2 * TB},
		{"512b", 512},
		{"1Ki", KB},
		{"64Mi", 64 * MB},
		{"1Gi", GB},
		{" 10 mb ", 10 * MB},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.input)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "10XB", "-5MB", "MB10"} {
		_, err := Parse(input)
		assert.Error(t, err, "Parse(%q)", input)
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
	assert.Equal(t, int64(5*MB), MustParse("5MB"))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{KB, "1.00 KB"},
		{1536, "1.50 KB"},
		{100 * MB, "100.00 MB"},
		{GB, "1.00 GB"},
		{2 * TB, "2.00 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.bytes), "Format(%d)", tt.bytes)
	}
}

func TestSizeUnmarshalYAML(t *testing.T) {
	var doc struct {
		Limit Size `yaml:"limit"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("limit: 64MB"), &doc))
	assert.Equal(t, int64(64*MB), doc.Limit.Bytes())

	require.NoError(t, yaml.Unmarshal([]byte("limit: 4096"), &doc))
	assert.Equal(t, int64(4096), doc.Limit.Bytes())

	assert.Error(t, yaml.Unmarshal([]byte("limit: 10XB"), &doc))
	assert.Error(t, yaml.Unmarshal([]byte("limit: -1"), &doc))
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "1.00 MB", Size(MB).String())
}
