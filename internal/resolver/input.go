// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package resolver normalizes loosely typed movie input into canonical
// movie ids. Wire input arrives as a JSON number, string, or mixed
// array; it is parsed once into a tagged variant so every later stage
// handles an exhaustive, well-typed shape instead of re-checking
// runtime types.
package resolver

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ErrInvalidInput indicates a movie input shape that is neither an id,
// a name, nor a list of those.
var ErrInvalidInput = errors.New("invalid movie input: provide a movie id (integer), movie name (string), or a list of ids/names")

// NotFoundError indicates a movie name that matched nothing in the
// catalog. The offending name is carried so the caller can report it.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no movie with the name %q exists", e.Name)
}

// TermKind discriminates the variants of a Term.
type TermKind int

const (
	// TermID is a literal canonical movie id.
	TermID TermKind = iota

	// TermName is a free-text name resolved by substring match.
	TermName
)

// Term is one element of a movie input: either an id or a name.
type Term struct {
	kind TermKind
	id   int
	name string
}

// ID creates an id term.
func ID(id int) Term {
	return Term{kind: TermID, id: id}
}

// Name creates a name term.
func Name(name string) Term {
	return Term{kind: TermName, name: name}
}

// Kind returns the term's variant tag.
func (t Term) Kind() TermKind { return t.kind }

// MovieInput is the tagged movie input accepted by the resolver:
// a single id, a single name, or a mixed list of both.
type MovieInput struct {
	terms []Term

	// single marks inputs that arrived as a bare value rather than a
	// list. A bare unmatched name is an error for single-name input
	// exactly as for list elements; the flag only preserves the
	// original shape for logging.
	single bool
}

// SingleID creates an input holding one literal movie id.
func SingleID(id int) MovieInput {
	return MovieInput{terms: []Term{ID(id)}, single: true}
}

// SingleName creates an input holding one free-text movie name.
func SingleName(name string) MovieInput {
	return MovieInput{terms: []Term{Name(name)}, single: true}
}

// Mixed creates an input from a list of id and name terms.
func Mixed(terms []Term) MovieInput {
	return MovieInput{terms: terms}
}

// Terms returns the input's terms in their original order.
func (in MovieInput) Terms() []Term {
	return in.terms
}

// ParseMovieInput converts raw JSON into a MovieInput. Accepted shapes:
// an integer, a string, or an array mixing both. Anything else,
// including fractional numbers, objects, and nested arrays, yields
// ErrInvalidInput.
func ParseMovieInput(raw json.RawMessage) (MovieInput, error) {
	if len(raw) == 0 {
		return MovieInput{}, ErrInvalidInput
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return MovieInput{}, ErrInvalidInput
	}

	switch v := value.(type) {
	case float64:
		id, ok := asMovieID(v)
		if !ok {
			return MovieInput{}, ErrInvalidInput
		}
		return SingleID(id), nil
	case string:
		return SingleName(v), nil
	case []interface{}:
		terms := make([]Term, 0, len(v))
		for _, elem := range v {
			term, err := parseTerm(elem)
			if err != nil {
				return MovieInput{}, err
			}
			terms = append(terms, term)
		}
		return Mixed(terms), nil
	default:
		return MovieInput{}, ErrInvalidInput
	}
}

func parseTerm(elem interface{}) (Term, error) {
	switch v := elem.(type) {
	case float64:
		id, ok := asMovieID(v)
		if !ok {
			return Term{}, ErrInvalidInput
		}
		return ID(id), nil
	case string:
		return Name(v), nil
	default:
		return Term{}, ErrInvalidInput
	}
}

// asMovieID converts a JSON number to a movie id. JSON has no integer
// type, so integral floats are accepted; fractional values are not.
func asMovieID(v float64) (int, bool) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return int(v), true
}
