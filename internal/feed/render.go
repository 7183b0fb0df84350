package feed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olyadmengistu/quicktalk/internal/post"
)

// Renderer writes a full feed snapshot as text, replacing whatever was
// shown before. Clips typed video/* get a video line; everything else,
// including unrecognized types, falls back to audio controls.
type Renderer struct {
	Out io.Writer
	Loc *time.Location
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{Out: out, Loc: time.Local}
}

func (r *Renderer) Render(posts []post.Post) error {
	loc := r.Loc
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "quicktalk feed - %d clip(s) in the last 24h\n\n", len(posts))
	if len(posts) == 0 {
		b.WriteString("nothing yet. record a clip: quicktalk record\n")
		_, err := io.WriteString(r.Out, b.String())
		return err
	}

	for _, p := range posts {
		fmt.Fprintf(&b, "[%s] %s\n", p.CreatedAt.In(loc).Format("2006-01-02 15:04"), ownerLabel(p.Owner))
		kind := "audio"
		if p.IsVideo() {
			kind = "video"
		}
		fmt.Fprintf(&b, "  [%s] %s\n", kind, p.MediaURL)
		if p.IsReply() {
			fmt.Fprintf(&b, "  in reply to %s\n", *p.ReplyTo)
		}
		fmt.Fprintf(&b, "  reply: quicktalk reply %s\n\n", p.ID)
	}
	_, err := io.WriteString(r.Out, b.String())
	return err
}

func ownerLabel(owner string) string {
	if owner == "" {
		return "anonymous"
	}
	return owner
}
