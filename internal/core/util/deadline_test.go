package util

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestParseDeadline(t *testing.T) {
	RegisterTestingT(t)

	cases := map[string]time.Time{
		"2024-03-01T10:30:00Z":      time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01T10:30:00.500Z":  time.Date(2024, 3, 1, 10, 30, 0, 500000000, time.UTC),
		"2024-03-01T12:30:00+02:00": time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01T10:30":          time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01T10:30:15":       time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC),
		"2024-03-01 10:30:15":       time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC),
		"2024-03-01":                time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"  2024-03-01T10:30:00Z  ":  time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	for input, expected := range cases {
		parsed, err := ParseDeadline(input)

		Expect(err).To(BeNil(), input)
		Expect(parsed.Equal(expected)).To(BeTrue(), input)
		Expect(parsed.Location()).To(Equal(time.UTC), input)
	}
}

func TestParseDeadline_Invalid(t *testing.T) {
	RegisterTestingT(t)

	for _, input := range []string{"", "tomorrow", "2024-13-01", "01/03/2024"} {
		_, err := ParseDeadline(input)
		Expect(err).ToNot(BeNil(), input)
	}
}
