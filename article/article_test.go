package article

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArticle() Article {
	a := New("Title", "Summary", "Line one\nLine two", "https://example.test/news/1", "x",
		time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC))
	a.NTokensTitle = 1
	a.NTokensBody = 4
	return a
}

// TestNew_DerivesHostAndUID verifies URL-derived fields
func TestNew_DerivesHostAndUID(t *testing.T) {
	a := sampleArticle()

	assert.Equal(t, "example.test", a.Host)
	assert.Equal(t, UID("https://example.test/news/1"), a.UID)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), a.Date, "date should be truncated to the day")
}

// TestUID_Deterministic verifies the same URL always gives the same UID
func TestUID_Deterministic(t *testing.T) {
	first := UID("https://example.test/a")
	second := UID("https://example.test/a")
	other := UID("https://example.test/b")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 36)
}

func TestHost_Unparsable(t *testing.T) {
	assert.Equal(t, "", Host("://bad"))
	assert.Equal(t, "", Host("Invalid response from somewhere"))
}

// TestRow_RoundTrip verifies FromRow inverts Row for every column
func TestRow_RoundTrip(t *testing.T) {
	original := sampleArticle()

	row := original.Row()
	require.Len(t, row, NumColumns)
	assert.Equal(t, "2024-03-05", row["date"])
	assert.Equal(t, "4", row["n_tokens_body"])

	restored, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestRow_ZeroDate(t *testing.T) {
	a := Article{Title: "t", URL: "u"}
	restored, err := FromRow(a.Row())
	require.NoError(t, err)
	assert.True(t, restored.Date.IsZero())
}

func TestFromRow_MissingColumn(t *testing.T) {
	row := sampleArticle().Row()
	delete(row, "uid")

	_, err := FromRow(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"uid"`)
}

func TestFromRow_BadCount(t *testing.T) {
	row := sampleArticle().Row()
	row["n_tokens_title"] = "many"

	_, err := FromRow(row)
	assert.Error(t, err)
}

func TestValues_MatchesColumns(t *testing.T) {
	a := sampleArticle()
	values := a.Values()
	row := a.Row()

	for i, col := range Columns {
		assert.Equal(t, fmt.Sprint(values[i]), row[col], col)
	}
}

// TestAccumulator_AddAndAll verifies insertion order and copy semantics
func TestAccumulator_AddAndAll(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Article{Title: "one"})
	acc.Add(Article{Title: "two"})
	acc.Add(Article{Title: "one"})

	all := acc.All()
	require.Len(t, all, 3, "no dedup at the article level")
	assert.Equal(t, "one", all[0].Title)
	assert.Equal(t, "two", all[1].Title)

	all[0].Title = "changed"
	assert.Equal(t, "one", acc.All()[0].Title, "All should return a copy")
}

// TestAccumulator_ConcurrentAdd verifies Add is safe from many goroutines
func TestAccumulator_ConcurrentAdd(t *testing.T) {
	acc := NewAccumulator()

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(Article{URL: fmt.Sprintf("https://example.test/%d", i)})
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, acc.Len())
}

func TestAccumulator_LoadFrom(t *testing.T) {
	original := sampleArticle()
	acc := NewAccumulator()

	err := acc.LoadFrom([]Row{original.Row(), original.Row()})
	require.NoError(t, err)

	all := acc.All()
	require.Len(t, all, 2)
	assert.Equal(t, original, all[0])
}

func TestAccumulator_LoadFromBadRowLeavesUnchanged(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Article{Title: "existing"})

	bad := Row{"title": "only a title"}
	err := acc.LoadFrom([]Row{sampleArticle().Row(), bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
	assert.Equal(t, 1, acc.Len())
}
