package handler

import (
	"regexp"
	"strings"

	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

var tenantRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

func validateTenantID(tenant string) *apierr.Error {
	if tenant == "" {
		return apierr.TenantRequired()
	}
	if !tenantRegex.MatchString(tenant) {
		return apierr.TenantInvalid()
	}
	return nil
}

func validateSourceKind(kind string, known []string) *apierr.Error {
	for _, k := range known {
		if kind == k {
			return nil
		}
	}
	return apierr.InvalidSourceKind(strings.Join(known, ", "))
}

func validateLocator(locator string) *apierr.Error {
	if strings.TrimSpace(locator) == "" {
		return apierr.LocatorRequired()
	}
	return nil
}
