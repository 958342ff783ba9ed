package org

import "errors"

// ErrOrgNotFound is returned when an organisation is not found in the repository
var ErrOrgNotFound = errors.New("organization not found")

// ErrHolidayNotFound is returned when a holiday is not found in the repository
var ErrHolidayNotFound = errors.New("holiday not found")

// ErrHolidayExists is returned when a holiday already exists for the date
var ErrHolidayExists = errors.New("holiday already exists for date")
