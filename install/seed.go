package install

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/quillpress/quillpress/defaults"
	"github.com/quillpress/quillpress/interfaces"
)

// seedPubDate is the fixed publish timestamp stamped on every seed
// post. Seed content sorts below anything the operator writes later.
var seedPubDate = time.Date(2023, 3, 14, 9, 30, 0, 0, time.UTC)

// reservedSlugs are identifiers the router claims for itself; the owner
// username must not shadow them.
var reservedSlugs = map[string]struct{}{
	"admin":  {},
	"author": {},
	"blog":   {},
	"feed":   {},
	"page":   {},
	"search": {},
	"tag":    {},
	"login":  {},
	"logout": {},
	"api":    {},
	"rss":    {},
}

type settingDefault struct {
	Name  string
	Value string
}

// defaultSettings is the complete baseline settings set. All of these
// must exist before the owner identity is created; later reads assume
// their presence. The auth key is generated fresh per installation.
func defaultSettings() []settingDefault {
	return []settingDefault{
		{"auth_key", randomKey()},
		{"allowed_upload_types", "pdf,doc,docx,ppt,pptx,odt,xls,xlsx,txt,md,csv,jpg,jpeg,png,gif,ico,svg,mp3,m4a,ogg,wav,mp4,m4v,mov,webm"},
		{"cover", "assets/img/cover.jpg"},
		{"default_content", "Start writing here..."},
		{"default_title", "Untitled Post"},
		{"favicon", "assets/img/favicon.png"},
		{"foot_code", ""},
		{"frag_admin", "admin"},
		{"frag_author", "author"},
		{"frag_blog", "blog"},
		{"frag_feed", "feed"},
		{"frag_page", "page"},
		{"frag_search", "search"},
		{"frag_tag", "tag"},
		{"generator", "on"},
		{"head_code", ""},
		{"homepage", ""},
		{"language", "en-us"},
		{"logo", "assets/img/logo.png"},
		{"mailer", "default"},
		{"maintenance", "off"},
		{"maintenance_message", "<p>Sorry for the inconvenience, we&rsquo;re performing some maintenance at the moment. We&rsquo;ll be back online shortly!</p>"},
		{"navigation", `[{"label":"Home","link":"/"}]`},
		{"password_min_length", "8"},
		{"posts_per_page", "10"},
		{"tagline", "Start something worth reading."},
		{"template_cache", "on"},
		{"theme", "meadow"},
		{"timezone", "America/New_York"},
		{"title", "A Quillpress Blog"},
		{"twitter", ""},
	}
}

// randomKey returns 32 random bytes hex-encoded, used to sign cookies
// and tokens for this deployment.
func randomKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("install: reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// seedTag is the single default taxonomy entry.
func seedTag(now time.Time) interfaces.Tag {
	return interfaces.Tag{
		Slug:        "getting-started",
		Name:        "Getting Started",
		Description: "This is a sample tag. You can delete it, rename it, or do whatever you want with it!",
		Type:        "post",
		Created:     now,
	}
}

// seedPosts are the four default content entries, in insertion order.
// Exactly the first is sticky.
func seedPosts(author string, now time.Time) []interfaces.Post {
	entries := []struct {
		slug  string
		title string
		body  string
		image string
	}{
		{"welcome-to-quillpress", "Welcome to Quillpress", "welcome", "content/uploads/seed/leaves.jpg"},
		{"the-editor", "The Editor", "editor", "content/uploads/seed/sunflower.jpg"},
		{"themes-and-plugins", "Themes & Plugins", "themes", "content/uploads/seed/autumn.jpg"},
		{"help-and-support", "Help & Support", "support", "content/uploads/seed/ladybug.jpg"},
	}

	posts := make([]interfaces.Post, 0, len(entries))
	for i, e := range entries {
		posts = append(posts, interfaces.Post{
			Slug:    e.slug,
			Title:   e.title,
			Content: defaults.PostBody(e.body),
			Image:   e.image,
			Author:  author,
			Status:  "published",
			Tags:    []string{"getting-started"},
			Sticky:  i == 0,
			PubDate: seedPubDate,
			Created: now,
		})
	}
	return posts
}
