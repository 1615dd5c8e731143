package web

import "testing"

func TestView(t *testing.T) {
	tests := []struct {
		name     string
		view     View
		wantPath string
		wantHome bool
	}{
		{"home", HomeView(), "/", true},
		{"topic", TopicView("1-3"), "/temas/1-3", false},
		{"escaped topic", TopicView("a/b"), "/temas/a%2Fb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.view.Path(); got != tt.wantPath {
				t.Errorf("Path() = %q, want %q", got, tt.wantPath)
			}
			if got := tt.view.IsHome(); got != tt.wantHome {
				t.Errorf("IsHome() = %v, want %v", got, tt.wantHome)
			}
		})
	}
}

func TestTabPath(t *testing.T) {
	if got := TabPath("1-2", "posesivos"); got != "/temas/1-2?tab=posesivos" {
		t.Errorf("TabPath() = %q", got)
	}
	if got := TabPath("1-2", ""); got != "/temas/1-2" {
		t.Errorf("TabPath() without tab = %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("uno\n\n  dos  \n\n\n")
	if len(got) != 2 || got[0] != "uno" || got[1] != "dos" {
		t.Errorf("paragraphs() = %q, want [uno dos]", got)
	}
}
