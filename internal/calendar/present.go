package calendar

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chris-regnier/contentcal/internal/item"
)

// Category is the semantic color of a pill or dot. Renderers map it to a
// concrete palette.
type Category string

const (
	CategoryNeutral Category = "neutral"
	CategoryInfo    Category = "info"
	CategoryWarning Category = "warning"
	CategoryActive  Category = "active"
	CategorySuccess Category = "success"
	CategoryDanger  Category = "danger"
	CategoryPost    Category = "post"
	CategoryOutline Category = "outline"
	CategoryArticle Category = "article"
)

// Pill is the status badge shown next to an item.
type Pill struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// Descriptor is everything a renderer needs to draw one item.
type Descriptor struct {
	Ref       item.Ref `json:"ref"`
	Label     string   `json:"label"`
	Pill      Pill     `json:"pill"`
	Dot       Category `json:"dot"`
	Href      string   `json:"href"`
	Platforms []string `json:"platforms,omitempty"`
	Mutable   bool     `json:"mutable"`
}

type pillKey struct {
	kind   item.Kind
	status item.Status
}

var pills = map[pillKey]Pill{
	{item.KindSocialPost, item.StatusPending}:   {"Pending", CategoryWarning},
	{item.KindSocialPost, item.StatusQueued}:    {"Queued", CategoryInfo},
	{item.KindSocialPost, item.StatusPosting}:   {"Posting", CategoryActive},
	{item.KindSocialPost, item.StatusPosted}:    {"Posted", CategorySuccess},
	{item.KindSocialPost, item.StatusFailed}:    {"Failed", CategoryDanger},
	{item.KindSocialPost, item.StatusCancelled}: {"Cancelled", CategoryNeutral},

	{item.KindArticle, item.StatusDraft}:      {"Draft", CategoryNeutral},
	{item.KindArticle, item.StatusGenerating}: {"Generating", CategoryActive},
	{item.KindArticle, item.StatusCompleted}:  {"Ready", CategoryInfo},
	{item.KindArticle, item.StatusPublished}:  {"Published", CategorySuccess},
	{item.KindArticle, item.StatusFailed}:     {"Failed", CategoryDanger},

	{item.KindOutline, ""}: {"Outline", CategoryOutline},
}

var kindDots = map[item.Kind]Category{
	item.KindSocialPost: CategoryPost,
	item.KindOutline:    CategoryOutline,
	item.KindArticle:    CategoryArticle,
}

var kindRoutes = map[item.Kind]string{
	item.KindSocialPost: "/social-posts/",
	item.KindOutline:    "/outlines/",
	item.KindArticle:    "/articles/",
}

var kindNouns = map[item.Kind]string{
	item.KindSocialPost: "post",
	item.KindOutline:    "outline",
	item.KindArticle:    "article",
}

// Present maps an item to its display descriptor. Unknown statuses get a
// neutral pill carrying the raw status text.
func Present(it item.Item) Descriptor {
	return Descriptor{
		Ref:       it.Ref(),
		Label:     label(it),
		Pill:      PillFor(it.Kind, it.Status),
		Dot:       dotFor(it.Kind),
		Href:      Href(it.Ref()),
		Platforms: slices.Clone(it.Platforms),
		Mutable:   it.Mutable(),
	}
}

// PillFor returns the status pill for a kind and status.
func PillFor(kind item.Kind, status item.Status) Pill {
	if kind == item.KindOutline {
		status = ""
	}
	if p, ok := pills[pillKey{kind, status}]; ok {
		return p
	}
	text := strings.TrimSpace(string(status))
	if text == "" {
		text = "Unknown"
	} else {
		r, size := utf8.DecodeRuneInString(text)
		text = string(unicode.ToUpper(r)) + text[size:]
	}
	return Pill{Label: text, Category: CategoryNeutral}
}

// Href returns the navigation target for an item.
func Href(ref item.Ref) string {
	route, ok := kindRoutes[ref.Kind]
	if !ok {
		route = "/" + string(ref.Kind) + "s/"
	}
	return route + ref.ID
}

func dotFor(kind item.Kind) Category {
	if c, ok := kindDots[kind]; ok {
		return c
	}
	return CategoryNeutral
}

func label(it item.Item) string {
	if t := strings.TrimSpace(it.Title); t != "" {
		return t
	}
	noun, ok := kindNouns[it.Kind]
	if !ok {
		noun = "item"
	}
	return "Untitled " + noun
}
