// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package validation

import (
	"strings"
	"testing"
)

type feedRequest struct {
	Lang  string `validate:"required,langtag"`
	Limit int    `validate:"min=1,max=32"`
	Page  int    `validate:"min=0"`
}

func TestValidateStructPasses(t *testing.T) {
	tests := []feedRequest{
		{Lang: "en", Limit: 5, Page: 0},
		{Lang: "pt-BR", Limit: 32, Page: 12},
		{Lang: "zh-Hant", Limit: 1, Page: 3},
	}

	for _, req := range tests {
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("ValidateStruct(%+v) = %v, want nil", req, err)
		}
	}
}

func TestValidateStructLangTag(t *testing.T) {
	tests := []struct {
		name string
		lang string
	}{
		{"empty", ""},
		{"single letter", "e"},
		{"three letters", "eng"},
		{"uppercase", "EN"},
		{"underscore region", "en_US"},
		{"trailing dash", "en-"},
		{"digits", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := feedRequest{Lang: tt.lang, Limit: 5}
			err := ValidateStruct(&req)
			if err == nil {
				t.Fatalf("ValidateStruct accepted lang %q", tt.lang)
			}
			apiErr := err.ToAPIError()
			if apiErr.Code != "VALIDATION_ERROR" {
				t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
			}
		})
	}
}

func TestValidateStructLimitBounds(t *testing.T) {
	req := feedRequest{Lang: "en", Limit: 50}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct accepted limit 50, want error")
	}
	if !strings.Contains(err.Error(), "at most 32") {
		t.Errorf("error %q does not mention the max bound", err.Error())
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := feedRequest{Lang: "bogus-lang-tag", Limit: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct accepted invalid request")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multi-error APIError should carry per-field details")
	}
}
