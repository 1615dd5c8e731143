package web

import "net/url"

// ViewKind is the top-level page being shown.
type ViewKind int

const (
	ViewHome ViewKind = iota
	ViewTopic
)

// View is the navigation state: the home page or one topic's detail page.
// Both transitions are plain links, so either view is reachable from the other.
type View struct {
	Kind    ViewKind
	TopicID string
}

// HomeView returns the syllabus view.
func HomeView() View {
	return View{Kind: ViewHome}
}

// TopicView returns the detail view of a topic.
func TopicView(topicID string) View {
	return View{Kind: ViewTopic, TopicID: topicID}
}

// IsHome reports whether v is the syllabus view.
func (v View) IsHome() bool {
	return v.Kind == ViewHome
}

// Path returns the URL path that renders v.
func (v View) Path() string {
	if v.Kind == ViewTopic {
		return "/temas/" + url.PathEscape(v.TopicID)
	}
	return "/"
}

// TabPath returns the URL of a topic tab.
func TabPath(topicID, tabID string) string {
	p := TopicView(topicID).Path()
	if tabID == "" {
		return p
	}
	return p + "?tab=" + url.QueryEscape(tabID)
}
