// Package drawer renders the stage graph of a composed sequence.
//
// Every operator records a pipeline.Stage; drawer turns the stages reachable
// from a sequence into a directed acyclic graph with one vertex per stage and
// an edge from each source to the stage that pulls from it. The graph can be
// written as Graphviz DOT or summarised as text.
//
//	err := drawer.DrawFile("query.dot", query.Stage())
package drawer
