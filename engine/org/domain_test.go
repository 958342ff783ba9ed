package org

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrg() *Organization {
	return &Organization{
		Name:              "acme",
		Timezone:          "Europe/Berlin",
		WorkingDaysOfWeek: "0111110",
		WorkingHours: []WorkBlock{
			{Start: "09:00", End: "13:00"},
			{Start: "14:00", End: "18:00"},
		},
	}
}

func TestOrganization_Validate(t *testing.T) {
	t.Run("Should accept a well-formed configuration", func(t *testing.T) {
		assert.NoError(t, validOrg().Validate())
	})

	t.Run("Should reject unknown timezones", func(t *testing.T) {
		o := validOrg()
		o.Timezone = "Moon/Crater"

		assert.Error(t, o.Validate())
	})

	t.Run("Should reject masks that are not seven characters", func(t *testing.T) {
		o := validOrg()
		o.WorkingDaysOfWeek = "11111"

		assert.Error(t, o.Validate())
	})

	t.Run("Should reject overlapping blocks", func(t *testing.T) {
		o := validOrg()
		o.WorkingHours = []WorkBlock{
			{Start: "09:00", End: "13:00"},
			{Start: "12:00", End: "18:00"},
		}

		assert.Error(t, o.Validate())
	})

	t.Run("Should reject blocks that end before they start", func(t *testing.T) {
		o := validOrg()
		o.WorkingHours = []WorkBlock{{Start: "13:00", End: "09:00"}}

		assert.Error(t, o.Validate())
	})

	t.Run("Should accept a full-day block ending at 24:00", func(t *testing.T) {
		o := validOrg()
		o.WorkingHours = []WorkBlock{{Start: "00:00", End: "24:00"}}

		assert.NoError(t, o.Validate())
	})
}

func TestOrganization_WorksOnWeekday(t *testing.T) {
	t.Run("Should read the mask Sunday first", func(t *testing.T) {
		o := validOrg()

		assert.False(t, o.WorksOnWeekday(time.Sunday))
		assert.True(t, o.WorksOnWeekday(time.Monday))
		assert.True(t, o.WorksOnWeekday(time.Friday))
		assert.False(t, o.WorksOnWeekday(time.Saturday))
	})

	t.Run("Should treat dashes and spaces as non-working", func(t *testing.T) {
		o := validOrg()
		o.WorkingDaysOfWeek = "-11111 "

		assert.False(t, o.WorksOnWeekday(time.Sunday))
		assert.False(t, o.WorksOnWeekday(time.Saturday))
	})
}

func TestWorkBlock_Minutes(t *testing.T) {
	t.Run("Should parse wall-clock boundaries", func(t *testing.T) {
		start, end, err := WorkBlock{Start: "09:30", End: "17:45"}.Minutes()

		require.NoError(t, err)
		assert.Equal(t, 9*60+30, start)
		assert.Equal(t, 17*60+45, end)
	})

	t.Run("Should reject malformed clock strings", func(t *testing.T) {
		_, _, err := WorkBlock{Start: "9am", End: "17:00"}.Minutes()
		assert.Error(t, err)

		_, _, err = WorkBlock{Start: "25:00", End: "26:00"}.Minutes()
		assert.Error(t, err)

		_, _, err = WorkBlock{Start: "24:30", End: "24:45"}.Minutes()
		assert.Error(t, err)
	})
}
