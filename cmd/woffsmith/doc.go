// Package main hosts the woffsmith CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, registers input fonts with an
// in-memory job registry, drives a batch conversion through the workflow
// manager, and delivers the converted containers as loose files or a single
// zip archive. The inspect command decodes container headers and sfnt table
// directories without loading configuration.
package main
