package hcloud

import (
	"errors"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// busyMarker is the contention signal some control planes only put in the message text.
const busyMarker = "RESOURCE_BUSY"

// IsResourceBusy reports whether a failed call hit transient contention and
// is likely to succeed when repeated.
func IsResourceBusy(err error) bool {
	if err == nil {
		return false
	}
	if isResourceLocked(err) || IsRateLimited(err) {
		return true
	}

	var actionErr hcloud.ActionError
	if errors.As(err, &actionErr) && actionErr.Code == string(hcloud.ErrorCodeLocked) {
		return true
	}

	return strings.Contains(err.Error(), busyMarker)
}

// isResourceLocked checks if an error indicates a resource is locked.
// Locked resources typically occur while another action is running on the
// same server, such as a volume attach or a type change.
func isResourceLocked(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeLocked,   // Item is locked (action running)
		hcloud.ErrorCodeConflict, // Resource changed during request
		hcloud.ErrorCodeResourceUnavailable,
	)
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeRateLimitExceeded)
}
