package model

import (
	"encoding/json"
	"time"
)

// Category is one of the closed set of article categories.
type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryScience       Category = "Science"
	CategoryHealth        Category = "Health"
	CategoryBusiness      Category = "Business"
	CategoryEntertainment Category = "Entertainment"
	CategorySports        Category = "Sports"
	CategoryPolitics      Category = "Politics"
	CategoryTravel        Category = "Travel"
	CategoryFood          Category = "Food"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryTechnology, CategoryScience, CategoryHealth, CategoryBusiness,
	CategoryEntertainment, CategorySports, CategoryPolitics, CategoryTravel,
	CategoryFood, CategoryLifestyle, CategoryEducation, CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}

	return false
}

// Article data model. Likes, Dislikes and BlockedBy hold user ids; a user id
// is never in both Likes and Dislikes.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Category  Category  `json:"category"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"-"`
	Author    *Author   `json:"-"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	BlockedBy []string  `json:"blockedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the expanded author record some listings embed in place of the
// plain author id.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

func (a *Author) Name() string {
	if a == nil {
		return ""
	}

	return a.FirstName + " " + a.LastName
}

type articleAlias Article

type articleWire struct {
	*articleAlias
	AuthorID json.RawMessage `json:"authorId,omitempty"`
}

// MarshalJSON writes the author as an embedded object when known and as a
// plain id otherwise.
func (a Article) MarshalJSON() ([]byte, error) {
	var author interface{} = a.AuthorID
	if a.Author != nil {
		author = a.Author
	}

	raw, err := json.Marshal(author)
	if err != nil {
		return nil, err
	}

	return json.Marshal(articleWire{articleAlias: (*articleAlias)(&a), AuthorID: raw})
}

// UnmarshalJSON accepts authorId as either a string or an author object.
func (a *Article) UnmarshalJSON(data []byte) error {
	wire := articleWire{articleAlias: (*articleAlias)(a)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a.AuthorID, a.Author = "", nil
	if len(wire.AuthorID) == 0 || string(wire.AuthorID) == "null" {
		return nil
	}

	if wire.AuthorID[0] == '"' {
		return json.Unmarshal(wire.AuthorID, &a.AuthorID)
	}

	author := &Author{}
	if err := json.Unmarshal(wire.AuthorID, author); err != nil {
		return err
	}
	a.Author = author
	a.AuthorID = author.ID

	return nil
}

func (a *Article) LikedBy(userID string) bool    { return contains(a.Likes, userID) }
func (a *Article) DislikedBy(userID string) bool { return contains(a.Dislikes, userID) }
func (a *Article) BlockedFor(userID string) bool { return contains(a.BlockedBy, userID) }

// ToggleLike flips the user's like and always clears a dislike.
func (a *Article) ToggleLike(userID string) {
	if a.LikedBy(userID) {
		a.Likes = without(a.Likes, userID)
	} else {
		a.Likes = append(clone(a.Likes), userID)
	}
	a.Dislikes = without(a.Dislikes, userID)
}

// ToggleDislike flips the user's dislike and always clears a like.
func (a *Article) ToggleDislike(userID string) {
	if a.DislikedBy(userID) {
		a.Dislikes = without(a.Dislikes, userID)
	} else {
		a.Dislikes = append(clone(a.Dislikes), userID)
	}
	a.Likes = without(a.Likes, userID)
}

func (a *Article) ToggleBlock(userID string) {
	if a.BlockedFor(userID) {
		a.BlockedBy = without(a.BlockedBy, userID)
	} else {
		a.BlockedBy = append(clone(a.BlockedBy), userID)
	}
}

// Clone returns a deep copy so callers can stage edits without touching the
// original slices.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}

	c := *a
	c.Tags = clone(a.Tags)
	c.Likes = clone(a.Likes)
	c.Dislikes = clone(a.Dislikes)
	c.BlockedBy = clone(a.BlockedBy)
	if a.Author != nil {
		author := *a.Author
		c.Author = &author
	}

	return &c
}

// ArticlePage is one page of the article listing.
type ArticlePage struct {
	Articles []*Article `json:"articles"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}

	return false
}

func without(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}

func clone(set []string) []string {
	out := make([]string, len(set))
	copy(out, set)

	return out
}
