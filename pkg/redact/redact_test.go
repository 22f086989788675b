package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"john.doe@example.com", "jo******@ex*****.com"},
		{"a@b.co.uk", "a@b.co.uk"},
		{"ada@localhost", "ad*@lo*******"},
		{"not-an-email", "************"},
		{"jösé@café.fr", "jö**@ca**.fr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"203.0.113.7", "203.0.*.*"},
		{"::ffff:192.168.1.20", "192.168.*.*"},
		{"2001:db8:1:2:3:4:5:6", "2001:db8:1:2:*:*:*:*"},
		{"unknown", "unk****"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IP(tt.in))
		})
	}
}
