package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAthlete_FullName(t *testing.T) {
	tests := []struct {
		name     string
		athlete  Athlete
		expected string
	}{
		{"first and last", Athlete{FirstName: "Ann", LastName: "Adams"}, "Ann Adams"},
		{"first only", Athlete{FirstName: "Ann"}, "Ann"},
		{"last only", Athlete{LastName: "Adams"}, "Adams"},
		{"neither", Athlete{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.athlete.FullName())
		})
	}
}
