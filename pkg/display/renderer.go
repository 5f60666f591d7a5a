package display

import (
	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/framework"
)

// Renderer shows a line of text on a display.
type Renderer interface {
	Render(text string) error
}

// RenderFunc is the func form of Renderer.
type RenderFunc func(string) error

// Render implements Renderer.
func (f RenderFunc) Render(text string) error {
	return f(text)
}

// LogRenderer logs the text instead of showing it.
type LogRenderer struct{}

// Render implements Renderer.
func (LogRenderer) Render(text string) error {
	glog.Infof("display: %q", text)
	return nil
}

// Multi renders on all renderers, collecting failures.
func Multi(renderers ...Renderer) Renderer {
	return RenderFunc(func(text string) error {
		var errs framework.AggregatedError
		for _, r := range renderers {
			errs.Add(r.Render(text))
		}
		return errs.Aggregate()
	})
}
