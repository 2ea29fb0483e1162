package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCategoryHasDescription(t *testing.T) {
	for category, description := range CategoryDescriptions {
		assert.NotEmpty(t, description, "category %q has no description", category)
	}
}

func TestFacultyCategories(t *testing.T) {
	for _, dept := range Departments {
		category := FacultyCategory(dept)
		assert.True(t, category.Valid(), "faculty category for %q is not in the taxonomy", dept)
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryHostelInfo.Valid())
	assert.True(t, CategoryGenericHTML.Valid())
	assert.False(t, CategoryNone.Valid())
	assert.False(t, Category("made_up").Valid())
}

func TestCategoryLabels(t *testing.T) {
	labels := CategoryLabels()
	require.Len(t, labels, len(CategoryDescriptions))
	assert.True(t, sort.StringsAreSorted(labels))
	assert.NotContains(t, labels, string(CategoryNone))
}
