// Package pkg provides the libraries behind statgrapher, a generator of
// nonsense statistics charts.
//
// # Overview
//
// A chart is a small raster image: a random background, a pair of axes
// through a random origin, logarithmically spaced gridlines, a few straight
// lines, parabolas and elliptical bends, and a caption such as
// "Quarterly printer entropy (adjusted)". Every random choice comes from one
// seeded generator, so a seed reproduces a chart exactly.
//
// The pkg directory is organized as:
//
//  1. [chart] - Core synthesis (palette, origin, grid, shapes, caption fit)
//  2. [chart/canvas] - Drawing surface, op recording, PNG export
//  3. [words] and [fonts] - Caption inputs (word banks, font ladders)
//  4. [pipeline] - Orchestration (load → render → encode, with caching)
//  5. [cache], [publish], [observability] - Infrastructure
//
// # Data Flow
//
//	seed + word file + font
//	         ↓
//	    [pipeline] Runner (cache lookup)
//	         ↓
//	    [chart] Session (draws in a fixed stage order)
//	         ↓
//	    [chart/canvas] Canvas → PNG
//	         ↓
//	    file, HTTP response, or [publish] sink
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{WordsPath: "words.txt", Seed: 42})
//	if err != nil {
//	    return err
//	}
//	return res.Save("random_graph.png")
package pkg
