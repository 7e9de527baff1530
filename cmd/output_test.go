package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

func TestFormatCompletion(t *testing.T) {
	assert.Equal(t, "2/3 (%67)", formatCompletion(models.Completion{Done: 2, Total: 3}))
	assert.Equal(t, "0/0 (%0)", formatCompletion(models.Completion{}))
}

func TestRecordSummary(t *testing.T) {
	id := "tt0371746"
	assert.Equal(t, "tt0371746 Iron Man (2008)", recordSummary(models.ResolvedRecord{ExternalID: &id, Title: "Iron Man", Year: 2008}))
	assert.Equal(t, "unresolved", recordSummary(models.UnresolvedRecord()))
	assert.Equal(t, "-", recordSummary(models.ResolvedRecord{}))
}

func TestSelectItems(t *testing.T) {
	a := &app{catalog: &models.Catalog{Franchises: []models.Franchise{{
		Key:   "marvel",
		Title: "Marvel",
		Categories: []models.Category{
			{Key: "mcu", Items: []models.CatalogItem{{ID: "marvel:mcu:iron-man", Title: "Iron Man", Kind: models.KindMovie}}},
			{Key: "shows", Items: []models.CatalogItem{{ID: "marvel:shows:loki", Title: "Loki", Kind: models.KindSeries}}},
		},
	}}}}

	items, err := selectItems(a, []string{"marvel:shows:loki"}, "", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Loki", items[0].Title)

	items, err = selectItems(a, nil, "marvel", "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = selectItems(a, nil, "marvel", "mcu")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "marvel:mcu:iron-man", items[0].ID)

	_, err = selectItems(a, nil, "marvel", "comics")
	assert.Error(t, err)
	_, err = selectItems(a, nil, "", "")
	assert.Error(t, err)
	_, err = selectItems(a, []string{"missing"}, "", "")
	assert.Error(t, err)
}
