package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmission_ToEvent(t *testing.T) {
	tests := []struct {
		name string
		in   Submission
		want CalendarEvent
	}{
		{
			name: "anonymous becomes Prayer",
			in:   Submission{ID: 1, Name: "Anonymous", Request: "Healing", Date: "2024-01-01"},
			want: CalendarEvent{Title: "Prayer", Date: "2024-01-01", Description: "Healing"},
		},
		{
			name: "named keeps name",
			in:   Submission{ID: 2, Name: "Sam", Request: "Work", Date: "2024-03-01"},
			want: CalendarEvent{Title: "Sam", Date: "2024-03-01", Description: "Work"},
		},
		{
			name: "fields pass through untouched",
			in:   Submission{ID: 3, Name: " Amy ", Request: "", Date: "next tuesday"},
			want: CalendarEvent{Title: " Amy ", Date: "next tuesday", Description: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ToEvent())
		})
	}
}
