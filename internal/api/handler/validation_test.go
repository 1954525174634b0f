package handler

import (
	"testing"

	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

func TestValidateTenantID(t *testing.T) {
	tests := []struct {
		tenant   string
		wantErr  bool
		wantCode apierr.Code
	}{
		{"acme", false, ""},
		{"acme-east-1", false, ""},
		{"a1b", false, ""},
		{"", true, apierr.CodeTenantRequired},
		{"ab", true, apierr.CodeTenantInvalid},               // too short
		{"-starts-dash", true, apierr.CodeTenantInvalid},     // starts with dash
		{"ends-dash-", true, apierr.CodeTenantInvalid},       // ends with dash
		{"UPPERCASE", true, apierr.CodeTenantInvalid},        // uppercase
		{"has space", true, apierr.CodeTenantInvalid},        // space
		{"has_underscore", true, apierr.CodeTenantInvalid},   // underscore
	}

	for _, tt := range tests {
		t.Run(tt.tenant, func(t *testing.T) {
			err := validateTenantID(tt.tenant)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTenantID(%q) error = %v, wantErr %v", tt.tenant, err, tt.wantErr)
			}
			if err != nil && err.Code() != tt.wantCode {
				t.Errorf("validateTenantID(%q) code = %v, want %v", tt.tenant, err.Code(), tt.wantCode)
			}
		})
	}
}

func TestValidateSourceKind(t *testing.T) {
	kinds := []string{"s3"}

	if err := validateSourceKind("s3", kinds); err != nil {
		t.Errorf("validateSourceKind(s3) error = %v", err)
	}
	if err := validateSourceKind("ftp", kinds); err == nil {
		t.Error("validateSourceKind(ftp) error = nil, want rejection")
	} else if err.Code() != apierr.CodeInvalidSourceKind {
		t.Errorf("code = %v, want %v", err.Code(), apierr.CodeInvalidSourceKind)
	}
}

func TestValidateLocator(t *testing.T) {
	if err := validateLocator("bucket/assets"); err != nil {
		t.Errorf("validateLocator error = %v", err)
	}
	if err := validateLocator("   "); err == nil {
		t.Error("blank locator must be rejected")
	} else if err.Code() != apierr.CodeLocatorRequired {
		t.Errorf("code = %v, want %v", err.Code(), apierr.CodeLocatorRequired)
	}
}
