/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package report runs the render pipeline of a pivot table or chart:
// layout, extended layout, extended response, option names, the layout
// synchronized with the response and the two axes.
package report

import (
	"errors"
	"fmt"

	"github.com/google/eventpivot/core/response"
)

var (
	// ErrEmptyResult is matched by EmptyResultError.
	ErrEmptyResult = errors.New("no data")
	// ErrTooManySeries is matched by TooManySeriesError.
	ErrTooManySeries = errors.New("too many series")
	// ErrStaleRender is matched by StaleRenderError.
	ErrStaleRender = errors.New("stale render")
)

// EmptyResultError is returned when the response has no rows.
type EmptyResultError struct {
	TableUUID string
}

func (e *EmptyResultError) Error() string {
	return "No data found"
}

// Is reports ErrEmptyResult and response.ErrEmptyResult as matches.
func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult || target == response.ErrEmptyResult
}

// TooManySeriesError is returned when a render would produce more series
// or cells than its limit and the caller did not confirm.
type TooManySeriesError struct {
	Count int
	Limit int
	// Chart is set for the chart series limit, unset for table cells.
	Chart bool
}

func (e *TooManySeriesError) Error() string {
	if e.Chart {
		return fmt.Sprintf("This chart has %d series, more than the limit of %d", e.Count, e.Limit)
	}
	return fmt.Sprintf("This table has %d cells, more than the limit of %d", e.Count, e.Limit)
}

// Is reports ErrTooManySeries as a match.
func (e *TooManySeriesError) Is(target error) bool {
	return target == ErrTooManySeries
}

// StaleRenderError is returned by a session that was replaced by a newer
// one before it finished.
type StaleRenderError struct {
	Generation uint64
	Current    uint64
}

func (e *StaleRenderError) Error() string {
	return fmt.Sprintf("render %d superseded by render %d", e.Generation, e.Current)
}

// Is reports ErrStaleRender as a match.
func (e *StaleRenderError) Is(target error) bool {
	return target == ErrStaleRender
}

// Confirm decides whether an oversized render goes ahead.
type Confirm func(*TooManySeriesError) bool

func checkLimit(count, limit int, chart bool, confirm Confirm) error {
	if limit <= 0 || count <= limit {
		return nil
	}
	err := &TooManySeriesError{Count: count, Limit: limit, Chart: chart}
	if confirm != nil && confirm(err) {
		return nil
	}
	return err
}
