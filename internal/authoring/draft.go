package authoring

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/validation"
)

var (
	ErrEmptyTag     = errors.New("tag is empty")
	ErrDuplicateTag = errors.New("tag already added")
	ErrNotImage     = errors.New("file is not an image")
)

// Draft is the editable copy of an article. Preview is what the form shows;
// Upload is what gets sent, and is set only when a new file was picked.
type Draft struct {
	Title    string
	Content  string
	Category model.Category
	Tags     []string
	Preview  string
	Upload   *client.File

	imageRemoved bool
}

// NewDraft returns the empty create form.
func NewDraft() *Draft {
	return &Draft{Tags: []string{}}
}

// DraftFrom copies an article into a draft. The article is not touched by
// later edits.
func DraftFrom(a *model.Article) *Draft {
	tags := append([]string{}, a.Tags...)

	return &Draft{
		Title:    a.Title,
		Content:  a.Content,
		Category: a.Category,
		Tags:     tags,
		Preview:  a.Image,
	}
}

// AddTag appends the trimmed tag unless it is empty or already present.
func (d *Draft) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	for _, t := range d.Tags {
		if t == tag {
			return ErrDuplicateTag
		}
	}
	d.Tags = append(d.Tags, tag)

	return nil
}

func (d *Draft) RemoveTag(tag string) {
	kept := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	d.Tags = kept
}

// SetImage takes a picked or dropped file. The preview and the upload come
// from the same bytes.
func (d *Draft) SetImage(name string, data []byte) error {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%s (%s): %w", name, mt.String(), ErrNotImage)
	}

	d.Preview = "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	d.Upload = &client.File{Name: name, Data: append([]byte(nil), data...)}
	d.imageRemoved = false

	return nil
}

// RemoveImage clears the picked file. On an edit the stored image is
// dropped on save.
func (d *Draft) RemoveImage() {
	d.Preview = ""
	d.Upload = nil
	d.imageRemoved = true
}

func (d *Draft) form() validation.DraftForm {
	return validation.DraftForm{Title: d.Title, Content: d.Content, Category: string(d.Category)}
}

// Form is the multipart submission for the draft.
func (d *Draft) Form() client.ArticleForm {
	return client.ArticleForm{
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Tags:     append([]string{}, d.Tags...),
		Image:    d.Upload,

		RemoveImage: d.imageRemoved,
	}
}
