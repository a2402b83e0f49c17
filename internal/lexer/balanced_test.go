package lexer

import (
	"reflect"
	"testing"
)

func TestStripComments(t *testing.T) {
	in := "a /* block\ncomment */ b // line comment\nc"
	got := StripComments("t", in)
	want := "a  b \nc"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNormalizeBrackets(t *testing.T) {
	in := "[a,\n b,\n c]"
	got := NormalizeBrackets("t", in)
	want := "[a, b, c]"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("a   b\n\tc")
	want := "a b c"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSplitTopLevelSemicolons(t *testing.T) {
	in := "a => eadv.x.val.last(); b : {a > 1 => 1}, {=> 0};"
	got := SplitTopLevel("t", in, SemicolonToken)
	want := []string{
		"a => eadv.x.val.last()",
		" b : {a > 1 => 1}, {=> 0}",
		"",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestSplitArgsAtDepthZero(t *testing.T) {
	got := SplitArgsAtDepthZero("t", "round(val,0)~dt")
	want := []string{"round(val,0)~dt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}

	got = SplitArgsAtDepthZero("t", "a, b, f(c,d)")
	want = []string{"a", "b", "f(c,d)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}
