package dto

import "testing"

func TestImportRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com/watch?v=abc", false},
		{"valid http", "http://example.com/v/123", false},
		{"empty", "", true},
		{"no scheme", "example.com/watch", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"garbage", "not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ImportRequest{URL: tt.url}
			errs := req.Validate()
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("Validate() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestTrackUpdateRequestValidate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		req     TrackUpdateRequest
		wantErr bool
	}{
		{"all fields", TrackUpdateRequest{Title: strPtr("t"), Artist: strPtr("a"), Album: strPtr("b")}, false},
		{"title only", TrackUpdateRequest{Title: strPtr("t")}, false},
		{"blank title", TrackUpdateRequest{Title: strPtr("  ")}, true},
		{"blank artist", TrackUpdateRequest{Artist: strPtr("")}, true},
		{"nothing set", TrackUpdateRequest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("Validate() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestTrackUpdateRequestEmpty(t *testing.T) {
	var req TrackUpdateRequest
	if !req.Empty() {
		t.Error("Expected empty request to report Empty")
	}

	title := "x"
	req.Title = &title
	if req.Empty() {
		t.Error("Expected request with a field to not report Empty")
	}
}

func TestValidationErrorHelpers(t *testing.T) {
	errs := []ValidationError{
		{Field: "url", Message: "is required"},
		{Field: "title", Message: "must not be blank"},
	}

	m := ToMap(errs)
	if m["url"] != "is required" || m["title"] != "must not be blank" {
		t.Errorf("ToMap() = %v", m)
	}

	resp := ToResponse(errs)
	if resp != "url: is required; title: must not be blank" {
		t.Errorf("ToResponse() = %q", resp)
	}
}
