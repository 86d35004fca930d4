package policy

import (
	"context"
	"testing"

	"github.com/iamwavecut/warden/internal/db"
)

func TestWordFilterCheck(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	store.censor(1, "hello world", db.MatchStrict)
	store.censor(1, "spam", db.MatchSmart)
	store.censor(1, "مرحبا", db.MatchSmart)
	filter := NewWordFilter(store)

	tests := []struct {
		text string
		want string
	}{
		{text: "hello world", want: "hello world"},
		{text: "  HELLO   World ", want: "hello world"},
		{text: "hello", want: ""},
		{text: "hello world again", want: ""},
		{text: "buy spam now", want: "spam"},
		{text: "spam!", want: "spam"},
		{text: "SPAM", want: "spam"},
		{text: "spammer", want: ""},
		{text: "مَرْحَبًا يا صديقي", want: "مرحبا"},
		{text: "", want: ""},
	}

	for _, tt := range tests {
		res, err := filter.Check(context.Background(), 1, tt.text)
		if err != nil {
			t.Fatalf("check %q: %v", tt.text, err)
		}
		if res.Matched != (tt.want != "") || res.Word != tt.want {
			t.Fatalf("check %q = %#v, want word %q", tt.text, res, tt.want)
		}
	}

	res, err := filter.Check(context.Background(), 2, "spam")
	if err != nil || res.Matched {
		t.Fatalf("other chat must not match: %#v %v", res, err)
	}
}
