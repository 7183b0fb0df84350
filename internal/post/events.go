package post

import "time"

const OpCreated = "created"

// ChangeEvent notes a mutation to the posts collection. Followers treat it
// purely as a "something changed, re-query" signal; the payload is advisory.
type ChangeEvent struct {
	ID string    `json:"id"`
	Op string    `json:"op"`
	At time.Time `json:"at"`
}
