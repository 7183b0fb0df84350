package post

import (
	"strings"
	"time"
)

// Post pairs an uploaded clip with its metadata. Posts are immutable once
// written; there is no update or delete path. CreatedAt is assigned by the
// database at write time so feed ordering never depends on client clocks.
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Owner       string    `json:"owner,omitempty" gorm:"size:64;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime:false;index"`
	MediaURL    string    `json:"media_url"`
	ContentType string    `json:"content_type" gorm:"size:100"`
	ReplyTo     *string   `json:"reply_to" gorm:"size:36"`
}

func (Post) TableName() string { return "posts" }

// IsVideo reports whether the clip gets a video player. Anything not
// explicitly typed video falls back to audio controls.
func (p *Post) IsVideo() bool {
	return strings.HasPrefix(p.ContentType, "video")
}

// IsReply reports whether the post points at a parent. Replies are flat
// pointers; no thread structure is maintained.
func (p *Post) IsReply() bool { return p.ReplyTo != nil }
