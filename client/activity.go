package client

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActivityType int

const Playing ActivityType = 0

const maxButtons = 2

type Button struct {
	Label string `json:"label"`
	Url   string `json:"url"`
}

type Party struct {
	ID   string `json:"id,omitempty"`
	Size []int  `json:"size,omitempty"` // [current, max]
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// Activity is the status shown by the peer. It is built per publish and never
// mutated once handed to SetActivity.
type Activity struct {
	Type       ActivityType      `json:"type"`
	State      string            `json:"state,omitempty"`
	Details    string            `json:"details,omitempty"`
	Timestamps *Timestamps       `json:"timestamps,omitempty"`
	Assets     *Assets           `json:"assets,omitempty"`
	Party      *Party            `json:"party,omitempty"`
	Secrets    map[string]string `json:"secrets,omitempty"`
	Buttons    []Button          `json:"buttons,omitempty"`
}

// StartedAt returns timestamps anchored at t, or nil for the zero time.
func StartedAt(t time.Time) *Timestamps {
	if t.IsZero() {
		return nil
	}
	return &Timestamps{Start: t.Unix()}
}

// sanitize returns a copy fit for the wire. The caller's value is left alone.
func (a Activity) sanitize() Activity {
	out := a

	if a.Party != nil {
		p := *a.Party
		if len(p.Size) != 2 {
			out.Party = nil
		} else {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			out.Party = &p
		}
	}

	out.Buttons = nil
	for _, b := range a.Buttons {
		label := strings.TrimSpace(b.Label)
		url := strings.TrimSpace(b.Url)
		if label == "" || url == "" || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
			continue
		}
		out.Buttons = append(out.Buttons, Button{Label: label, Url: url})
		if len(out.Buttons) == maxButtons {
			break
		}
	}

	if a.Timestamps != nil && a.Timestamps.Start == 0 && a.Timestamps.End == 0 {
		out.Timestamps = nil
	}
	if a.Assets != nil && *a.Assets == (Assets{}) {
		out.Assets = nil
	}
	return out
}
