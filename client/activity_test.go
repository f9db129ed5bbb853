package client

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSanitizeButtonsAndParty(t *testing.T) {
	in := Activity{
		Party: &Party{Size: []int{1, 5}},
		Buttons: []Button{
			{Label: " Docs ", Url: " https://example.com/docs "},
			{Label: "", Url: "https://example.com"},
			{Label: "ftp", Url: "ftp://example.com"},
			{Label: "Repo", Url: "http://example.com/repo"},
			{Label: "Third", Url: "https://example.com/3"},
		},
	}
	out := in.sanitize()

	if len(out.Buttons) != 2 {
		t.Fatalf("buttons = %v", out.Buttons)
	}
	if out.Buttons[0] != (Button{Label: "Docs", Url: "https://example.com/docs"}) {
		t.Fatalf("button[0] = %v", out.Buttons[0])
	}
	if out.Buttons[1].Label != "Repo" {
		t.Fatalf("button[1] = %v", out.Buttons[1])
	}
	if out.Party == nil || out.Party.ID == "" {
		t.Fatalf("party id not generated: %v", out.Party)
	}
	if in.Party.ID != "" {
		t.Fatalf("sanitize mutated the caller's party")
	}
}

func TestSanitizeDropsEmptyParts(t *testing.T) {
	out := Activity{
		Details:    "x",
		Timestamps: &Timestamps{},
		Assets:     &Assets{},
		Party:      &Party{ID: "p"},
	}.sanitize()
	if out.Timestamps != nil || out.Assets != nil || out.Party != nil {
		t.Fatalf("empty parts kept: %+v", out)
	}
}

func TestActivityJSONShape(t *testing.T) {
	start := time.Unix(1700000000, 0)
	b, err := json.Marshal(Activity{
		Details:    "Singleplayer",
		State:      "World: Test",
		Assets:     &Assets{LargeImage: "singleplayer", SmallImage: "logo"},
		Timestamps: StartedAt(start),
	}.sanitize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":0,"state":"World: Test","details":"Singleplayer","timestamps":{"start":1700000000},"assets":{"large_image":"singleplayer","small_image":"logo"}}`
	if string(b) != want {
		t.Fatalf("json = %s\nwant %s", b, want)
	}
	if StartedAt(time.Time{}) != nil {
		t.Fatalf("zero time must yield no timestamps")
	}
}
