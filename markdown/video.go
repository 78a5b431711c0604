package markdown

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/silicogen/postengine/content"
)

// VideoEmbed is the inline player widget that replaces a paragraph holding
// only a YouTube link. It starts Ready and moves to Playing once; the state
// lives on the instance and is never stored.
type VideoEmbed struct {
	ID string
	// PlayURL is fetched by htmx when the Ready button is clicked. Empty
	// means DefaultPlayURL.
	PlayURL string
	playing bool
}

// Play moves the widget to the Playing state. Calling it again has no effect.
func (v *VideoEmbed) Play() { v.playing = true }

// Playing reports whether Play has been called.
func (v *VideoEmbed) Playing() bool { return v.playing }

// EmbedURL is the privacy-enhanced player address loaded when playing.
func (v *VideoEmbed) EmbedURL() string {
	return "https://www.youtube-nocookie.com/embed/" + v.ID + "?autoplay=1&rel=0&modestbranding=1&playsinline=1"
}

// Render writes the widget markup for the current state.
func (v *VideoEmbed) Render(w io.Writer) error {
	id := html.EscapeString(v.ID)
	state, status := "ready", "Ready"
	if v.playing {
		state, status = "playing", "Playing"
	}

	var b bytes.Buffer
	b.WriteString(`<div class="video-embed" data-video-id="` + id + `" data-state="` + state + `">`)
	b.WriteString(`<div class="video-embed-chrome">`)
	b.WriteString(`<span class="dot dot-red"></span><span class="dot dot-yellow"></span><span class="dot dot-green"></span>`)
	b.WriteString(`<span class="video-embed-title">youtube · ` + id + `</span></div>`)
	b.WriteString(`<div class="video-embed-screen">`)
	if v.playing {
		b.WriteString(`<iframe src="` + html.EscapeString(v.EmbedURL()) + `" title="YouTube video" loading="lazy"`)
		b.WriteString(` allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>`)
	} else {
		playURL := v.PlayURL
		if playURL == "" {
			playURL = DefaultPlayURL(v.ID)
		}
		b.WriteString(`<button type="button" class="video-embed-play" hx-get="` + html.EscapeString(playURL) + `"`)
		b.WriteString(` hx-target="closest .video-embed" hx-swap="outerHTML"`)
		b.WriteString(` style="background-image:url('` + html.EscapeString(content.VideoThumbnailURL(v.ID)) + `')">`)
		b.WriteString(`<span class="video-embed-icon" aria-hidden="true">&#9654;</span>`)
		b.WriteString(`<span class="video-embed-hint">Click to play</span></button>`)
		b.WriteString(`<noscript><a href="https://www.youtube.com/watch?v=` + id + `">Watch on YouTube</a></noscript>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<div class="video-embed-status"><span class="video-embed-led"></span>` + status + `<span class="video-embed-source">YouTube</span></div>`)
	b.WriteString("</div>\n")

	_, err := w.Write(b.Bytes())
	return err
}

// Component returns the widget as a templ.Component.
func (v *VideoEmbed) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return v.Render(w)
	})
}
