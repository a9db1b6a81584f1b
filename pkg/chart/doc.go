// Package chart synthesizes decorative "statistics charts": a dark
// background, a pair of axes, logarithmically spaced gridlines, a few
// random curves and a caption composed from a word bank.
//
// Nothing is plotted from data. The curves are geometry generators tuned to
// stay on the canvas and the caption is fitted to the canvas width.
//
// # Sessions
//
// A [Session] owns one render. It draws every random value from the [Rand]
// it was given, so a seed reproduces the image exactly and two sessions never
// interfere. Rendering is a fixed pipeline of stages:
//
//	axes → gridlines → parabolas → bends → lines → caption
//
// Each stage draws on a [canvas.Surface]; pass a [canvas.Canvas] for pixels
// or a [canvas.Recorder] to inspect the geometry.
//
//	r := chart.NewRand(42)
//	s, err := chart.NewSession(r, 506, 284, bank, ladder.Faces(), chart.Options{})
//	if err != nil {
//	    return err
//	}
//	c := s.NewCanvas()
//	if err := s.Render(c); err != nil {
//	    return err
//	}
//	err = c.SavePNG("random_graph.png")
package chart
