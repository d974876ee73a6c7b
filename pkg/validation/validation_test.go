package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name      string `json:"name" validate:"required,min=2"`
	Specialty string `json:"specialty" validate:"required,specialty"`
	Day       string `json:"day" validate:"required,weekday"`
	Start     string `json:"start_time" validate:"required,clock"`
	Rate      int    `json:"rate" validate:"min=0"`
}

func TestNew_CustomTags(t *testing.T) {
	v := New()

	valid := sample{Name: "Hassan", Specialty: "plumber", Day: "Monday", Start: "08:30"}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name  string
		mut   func(*sample)
		field string
	}{
		{"bad specialty", func(s *sample) { s.Specialty = "astronaut" }, "specialty"},
		{"bad weekday", func(s *sample) { s.Day = "funday" }, "day"},
		{"bad clock", func(s *sample) { s.Start = "24:00" }, "start_time"},
		{"short name", func(s *sample) { s.Name = "H" }, "name"},
		{"negative", func(s *sample) { s.Rate = -1 }, "rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mut(&s)
			err := Translate(v.Struct(s))

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %T", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.NotEmpty(t, verrs[0].Message)
			assert.Contains(t, verrs.Details(), tt.field)
		})
	}
}

func TestTranslate_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))
}

func TestFailed(t *testing.T) {
	err := Failed("Booking validation failed", ValidationErrors{{Field: "duration", Message: "must be at least 1"}})
	assert.Equal(t, 422, err.StatusCode())
	assert.Equal(t, "must be at least 1", err.Details["duration"])

	err = Failed("x", errors.New("raw"))
	assert.Equal(t, "raw", err.Details["error"])
}
