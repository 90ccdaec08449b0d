package scoring

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

func TestComputeEmptyReport(t *testing.T) {
	got := Compute(CatalogV1, nil)

	want := Result{
		ScorePercentage:        0,
		CompletedDocumentTypes: []model.DocumentType{},
		TotalRequiredTypes:     8,
		CatalogVersion:         "v1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestComputeAllTypesIsFullScore(t *testing.T) {
	got := Compute(CatalogV1, model.AllDocumentTypes)

	assert.Equal(t, 100, got.ScorePercentage)
	assert.Len(t, got.CompletedDocumentTypes, 8)
}

func TestComputeDuplicatesDoNotInflate(t *testing.T) {
	got := Compute(CatalogV1, []model.DocumentType{
		model.DocumentTypeImage,
		model.DocumentTypeImage,
		model.DocumentTypeInvoice,
	})

	want := Result{
		ScorePercentage:        25,
		CompletedDocumentTypes: []model.DocumentType{model.DocumentTypeImage, model.DocumentTypeInvoice},
		TotalRequiredTypes:     8,
		CatalogVersion:         "v1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	docs := []model.DocumentType{
		model.DocumentTypeContract,
		model.DocumentTypeImage,
		model.DocumentTypeOther,
		model.DocumentTypeImage,
		model.DocumentTypeExpenseSummary,
	}
	first := Compute(CatalogV1, docs)
	again := Compute(CatalogV1, docs)
	require.Equal(t, first, again)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.DocumentType(nil), docs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if diff := cmp.Diff(first, Compute(CatalogV1, shuffled)); diff != "" {
			t.Fatalf("shuffle %d changed result (-want +got):\n%s", i, diff)
		}
	}
}

func TestComputeIsMonotonic(t *testing.T) {
	var docs []model.DocumentType
	prev := Compute(CatalogV1, docs).ScorePercentage
	for _, typ := range model.AllDocumentTypes {
		docs = append(docs, typ)
		next := Compute(CatalogV1, docs).ScorePercentage
		assert.Greater(t, next, prev, "adding %s should raise the score", typ)

		docs = append(docs, typ)
		assert.Equal(t, next, Compute(CatalogV1, docs).ScorePercentage, "duplicate %s changed the score", typ)
		prev = next
	}
	assert.Equal(t, 100, prev)
}

func TestComputeIgnoresTypesOutsideCatalog(t *testing.T) {
	narrow := Catalog{Version: "test", Types: []model.DocumentType{model.DocumentTypeImage, model.DocumentTypeInvoice}}

	got := Compute(narrow, []model.DocumentType{model.DocumentTypeImage, model.DocumentTypeContract})

	assert.Equal(t, 50, got.ScorePercentage)
	assert.Equal(t, []model.DocumentType{model.DocumentTypeImage}, got.CompletedDocumentTypes)
	assert.Equal(t, 2, got.TotalRequiredTypes)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 13, Percentage(1, 8))
	assert.Equal(t, 38, Percentage(3, 8))
	assert.Equal(t, 63, Percentage(5, 8))
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 100, Percentage(9, 8))
}

func TestLookupCatalog(t *testing.T) {
	c, err := LookupCatalog("")
	require.NoError(t, err)
	assert.Equal(t, "v1", c.Version)

	_, err = LookupCatalog("v0")
	assert.Error(t, err)
}
