package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSplitter(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{name: "lf", chunks: []string{"a\nb\n"}, want: []string{"a", "b"}},
		{name: "crlf", chunks: []string{"a\r\nb\r\n"}, want: []string{"a", "b"}},
		{name: "crlf split across writes", chunks: []string{"a\r", "\nb\n"}, want: []string{"a", "b"}},
		{name: "bare cr", chunks: []string{"a\rb\n"}, want: []string{"a", "b"}},
		{name: "blank lf line kept", chunks: []string{"a\n\nb\n"}, want: []string{"a", "", "b"}},
		{name: "blank cr line dropped", chunks: []string{"a\r\rb\n"}, want: []string{"a", "b"}},
		{name: "fragment held until close", chunks: []string{"par", "tial"}, want: []string{"partial"}},
		{name: "trailing cr at close", chunks: []string{"a\r"}, want: []string{"a"}},
		{name: "empty", chunks: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s LineSplitter
			var got []string
			for _, c := range tt.chunks {
				got = append(got, s.Write(c)...)
			}
			got = append(got, s.Close()...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineSplitter_HoldsPendingCR(t *testing.T) {
	var s LineSplitter

	assert.Empty(t, s.Write("line\r"))
	assert.Equal(t, []string{"line"}, s.Write("\n"))
	assert.Empty(t, s.Write("next"))
	assert.Equal(t, []string{"next"}, s.Close())
}
