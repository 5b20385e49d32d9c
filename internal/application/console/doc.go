// Package console holds the state and behavior of the integration console:
// the per-record-type mapping screens, the credentials form and the tab shell
// that composes them. It is free of any rendering concerns; the terminal UI
// drives it through the exported methods and re-renders on change callbacks.
//
// All remote calls go through Gateway, whose results are explicit
// shared.Result values. Shared data (the mapping list, stored settings and the
// refetch signal) lives in a Store injected into every component.
package console
