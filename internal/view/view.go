package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	titleWidth  = 40
	previewSize = 48
)

// Feed renders the visible articles with the user's own reactions marked.
func Feed(w io.Writer, articles []*model.Article, userID string) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "No articles to show.")

		return err
	}

	t := NewTable(w, []string{"ID", "Title", "Category", "Author", "Likes", "Dislikes", "Tags"})
	for _, a := range articles {
		t.AddRow(
			a.ID,
			truncate(a.Title, titleWidth),
			string(a.Category),
			authorName(a),
			mark(len(a.Likes), a.LikedBy(userID)),
			mark(len(a.Dislikes), a.DislikedBy(userID)),
			strings.Join(a.Tags, ", "),
		)
	}

	return t.Render()
}

// MyArticles renders the authoring list.
func MyArticles(w io.Writer, articles []*model.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "You have not written any articles yet.")

		return err
	}

	t := NewTable(w, []string{"ID", "Title", "Category", "Created"})
	for _, a := range articles {
		t.AddRow(a.ID, truncate(a.Title, titleWidth), string(a.Category), date(a))
	}

	return t.Render()
}

// Detail renders one article in full.
func Detail(w io.Writer, a *model.Article, userID string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", a.Title, strings.Repeat("-", utf8.RuneCountInString(a.Title)))
	fmt.Fprintf(&b, "By %s · %s · %s\n", authorName(a), a.Category, date(a))
	if len(a.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(a.Tags, ", "))
	}
	if a.Image != "" {
		fmt.Fprintf(&b, "Image: %s\n", truncate(a.Image, previewSize))
	}
	fmt.Fprintf(&b, "Likes: %s  Dislikes: %s\n\n",
		mark(len(a.Likes), a.LikedBy(userID)), mark(len(a.Dislikes), a.DislikedBy(userID)))
	b.WriteString(strings.TrimRight(a.Content, "\n"))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())

	return err
}

// BlockedLine is the hint shown under the feed, empty when nothing is
// blocked.
func BlockedLine(n int) string {
	if n == 0 {
		return ""
	}

	return fmt.Sprintf("%d article(s) blocked", n)
}

func Pagination(page, pages int) string {
	return fmt.Sprintf("Page %d of %d", page, pages)
}

// Draft renders the open authoring form.
func Draft(w io.Writer, heading, title, content string, category model.Category, tags []string, image string) error {
	t := NewTable(w, []string{"Field", "Value"})
	t.AddRow("Title", title)
	t.AddRow("Category", string(category))
	t.AddRow("Tags", strings.Join(tags, ", "))
	t.AddRow("Image", truncate(image, previewSize))
	t.AddRow("Content", truncate(strings.ReplaceAll(content, "\n", " "), previewSize))

	if _, err := fmt.Fprintln(w, heading); err != nil {
		return err
	}

	return t.Render()
}

// Profile renders the settings form with field errors beside their field.
func Profile(w io.Writer, u *model.User, interests []string, status string, errs map[string]string) error {
	t := NewTable(w, []string{"Field", "Value", "Error"})
	t.AddRow("Name", u.Name()+" ("+u.Initials()+")", "")
	t.AddRow("Email", u.Email, errs["email"])
	t.AddRow("Phone", u.Phone, errs["phone"])
	t.AddRow("Interests", strings.Join(interests, ", "), errs["interests"])
	t.AddRow("Status", status, "")

	if err := t.Render(); err != nil {
		return err
	}

	return FieldErrors(w, errs, "email", "phone", "interests")
}

// FieldErrors lists field errors in name order, skipping the given fields.
func FieldErrors(w io.Writer, errs map[string]string, skip ...string) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		if !contains(skip, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", name, errs[name]); err != nil {
			return err
		}
	}

	return nil
}

func mark(n int, mine bool) string {
	if mine {
		return fmt.Sprintf("%d*", n)
	}

	return fmt.Sprint(n)
}

func authorName(a *model.Article) string {
	if a.Author != nil {
		return a.Author.Name()
	}
	if a.AuthorID != "" {
		return a.AuthorID
	}

	return "unknown"
}

func date(a *model.Article) string {
	if a.CreatedAt.IsZero() {
		return "-"
	}

	return a.CreatedAt.Format(dateLayout)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n-1]) + "…"
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}

	return false
}
