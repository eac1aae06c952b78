package model

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeRoundTrip(t *testing.T) {
	a := &Article{ID: "a1", Likes: []string{"u2"}}

	a.ToggleLike("u1")
	assert.ElementsMatch(t, []string{"u2", "u1"}, a.Likes)

	a.ToggleLike("u1")
	assert.Equal(t, []string{"u2"}, a.Likes)
}

func TestToggleLikeClearsDislike(t *testing.T) {
	a := &Article{ID: "a1", Dislikes: []string{"u1"}}

	a.ToggleLike("u1")
	assert.True(t, a.LikedBy("u1"))
	assert.False(t, a.DislikedBy("u1"))

	a.ToggleDislike("u1")
	assert.True(t, a.DislikedBy("u1"))
	assert.False(t, a.LikedBy("u1"))
}

func TestReactionsStayMutuallyExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	users := []string{"u1", "u2", "u3"}
	a := &Article{ID: "a1"}

	for i := 0; i < 500; i++ {
		u := users[rng.Intn(len(users))]
		if rng.Intn(2) == 0 {
			a.ToggleLike(u)
		} else {
			a.ToggleDislike(u)
		}

		for _, id := range users {
			require.False(t, a.LikedBy(id) && a.DislikedBy(id), "user %s in both sets after step %d", id, i)
		}
	}
}

func TestToggleBlock(t *testing.T) {
	a := &Article{ID: "a1"}

	a.ToggleBlock("u1")
	assert.True(t, a.BlockedFor("u1"))

	a.ToggleBlock("u1")
	assert.False(t, a.BlockedFor("u1"))
	assert.Empty(t, a.BlockedBy)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	a := &Article{ID: "a1", Tags: []string{"go"}, Likes: []string{"u1"}}
	c := a.Clone()

	c.Tags[0] = "rust"
	c.ToggleLike("u2")

	assert.Equal(t, []string{"go"}, a.Tags)
	assert.Equal(t, []string{"u1"}, a.Likes)
}

func TestArticleAuthorWireForms(t *testing.T) {
	var plain Article
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","authorId":"u9"}`), &plain))
	assert.Equal(t, "u9", plain.AuthorID)
	assert.Nil(t, plain.Author)

	var expanded Article
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a2","authorId":{"id":"u9","firstName":"Ada","lastName":"Lovelace"}}`), &expanded))
	assert.Equal(t, "u9", expanded.AuthorID)
	require.NotNil(t, expanded.Author)
	assert.Equal(t, "Ada Lovelace", expanded.Author.Name())

	raw, err := json.Marshal(expanded)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"authorId":{"id":"u9"`)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryFood.Valid())
	assert.False(t, Category("Gardening").Valid())
}
