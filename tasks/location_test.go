package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    *Location
		wantErr string
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{name: "integers", input: "1,2", want: &Location{Lat: 1, Lng: 2}},
		{name: "decimals with spaces", input: " 52.52 , 13.405 ", want: &Location{Lat: 52.52, Lng: 13.405}},
		{name: "negative", input: "-33.86,-151.2", want: &Location{Lat: -33.86, Lng: -151.2}},
		{name: "bounds", input: "90,-180", want: &Location{Lat: 90, Lng: -180}},
		{name: "single value", input: "52.5", wantErr: "expected"},
		{name: "three values", input: "1,2,3", wantErr: "expected"},
		{name: "bad latitude", input: "north,2", wantErr: "invalid latitude"},
		{name: "bad longitude", input: "1,east", wantErr: "invalid longitude"},
		{name: "latitude too high", input: "90.1,0", wantErr: "latitude must be"},
		{name: "longitude too low", input: "0,-180.5", wantErr: "longitude must be"},
		{name: "not a number", input: "NaN,0", wantErr: "must be numbers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLocation(tc.input)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLocation_String(t *testing.T) {
	testCases := []struct {
		loc  Location
		want string
	}{
		{Location{Lat: 1, Lng: 2}, "1,2"},
		{Location{Lat: 52.52, Lng: 13.405}, "52.52,13.405"},
		{Location{Lat: -0.5, Lng: 179.999}, "-0.5,179.999"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.loc.String())

			parsed, err := ParseLocation(tc.want)
			require.NoError(t, err)
			assert.Equal(t, tc.loc, *parsed)
		})
	}
}
