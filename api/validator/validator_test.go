package validator

import "testing"

func TestValidator_ValidateStruct(t *testing.T) {
	type request struct {
		Message string   `validate:"required"`
		Kind    string   `validate:"omitempty,oneof=like helpful noted"`
		Lat     *float64 `validate:"omitempty,latitude"`
		Lng     *float64 `validate:"omitempty,longitude"`
	}

	lat := 43.6532
	badLat := 143.6532
	lng := -79.3832
	badLng := -279.3832

	tests := []struct {
		name      string
		req       request
		wantField string
		wantMsg   string
	}{
		{
			name: "Valid",
			req:  request{Message: "hello", Kind: "like", Lat: &lat, Lng: &lng},
		},
		{
			name:      "MissingRequired",
			req:       request{Kind: "like"},
			wantField: "Message",
			wantMsg:   "is required",
		},
		{
			name:      "UnknownKind",
			req:       request{Message: "hello", Kind: "love"},
			wantField: "Kind",
			wantMsg:   "must be one of: like helpful noted",
		},
		{
			name:      "LatitudeOutOfRange",
			req:       request{Message: "hello", Lat: &badLat, Lng: &lng},
			wantField: "Lat",
			wantMsg:   "must be a valid latitude",
		},
		{
			name:      "LongitudeOutOfRange",
			req:       request{Message: "hello", Lat: &lat, Lng: &badLng},
			wantField: "Lng",
			wantMsg:   "must be a valid longitude",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("Got errors %v, want none", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Got %d errors (%v), want 1", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Got field %q, want %q", errs[0].Field, tt.wantField)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("Got message %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	if errs := v.Validate(43.6532, "latitude"); len(errs) != 0 {
		t.Errorf("Got errors %v for a valid latitude", errs)
	}
	if errs := v.Validate(143.6532, "latitude"); len(errs) != 1 {
		t.Errorf("Got %d errors for an invalid latitude, want 1", len(errs))
	}
}
