package llmjson

import "testing"

func TestExtract(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantOK  bool
		wantKey string
		wantVal float64
	}{
		{
			name:    "plain_json",
			raw:     `{"a":1}`,
			wantOK:  true,
			wantKey: "a",
			wantVal: 1,
		},
		{
			name:    "fenced_with_language_tag",
			raw:     "```json\n{\"a\":1}\n```",
			wantOK:  true,
			wantKey: "a",
			wantVal: 1,
		},
		{
			name:    "fenced_without_language_tag",
			raw:     "```\n{\"a\":2}\n```",
			wantOK:  true,
			wantKey: "a",
			wantVal: 2,
		},
		{
			name:    "wrapped_in_prose",
			raw:     `here you go {"a":1} thanks`,
			wantOK:  true,
			wantKey: "a",
			wantVal: 1,
		},
		{
			name:   "no_json_at_all",
			raw:    "no json here",
			wantOK: false,
		},
		{
			name:   "empty",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "unclosed_brace",
			raw:    `{"a":`,
			wantOK: false,
		},
		{
			name:    "nested_object_greedy_span",
			raw:     "Result: {\"a\":3,\"nested\":{\"b\":true}} done.",
			wantOK:  true,
			wantKey: "a",
			wantVal: 3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obj, ok := Extract(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("Extract(%q) ok=%v, want %v", tc.raw, ok, tc.wantOK)
			}
			if !tc.wantOK {
				if obj != nil {
					t.Fatalf("Extract(%q) returned object %v on no-payload result", tc.raw, obj)
				}
				return
			}
			got, present := obj[tc.wantKey]
			if !present {
				t.Fatalf("Extract(%q) missing key %q: %v", tc.raw, tc.wantKey, obj)
			}
			if got != tc.wantVal {
				t.Fatalf("Extract(%q)[%q]=%v, want %v", tc.raw, tc.wantKey, got, tc.wantVal)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "no_fence", in: "plain text", want: "plain text"},
		{name: "json_fence", in: "```json\n{\"x\":1}\n```", want: `{"x":1}`},
		{name: "fence_without_closer", in: "```\nbody line", want: "body line"},
		{name: "only_fence_marker", in: "```", want: "```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Fatalf("StripCodeFences(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
