package service

import "errors"

// ErrNoEligibleMembers is returned when a delegation request has no member
// whose role allows assignment.
var ErrNoEligibleMembers = errors.New("no eligible household members")
